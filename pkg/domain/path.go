package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Name and role sentinels recognised in GUI paths.
const (
	// NameAny matches any element name.
	NameAny = "#ANY"
	// NameNameless matches only elements with an empty name.
	NameNameless = "NAMELESS"
	// RegexpPrefix introduces a regular expression name pattern.
	RegexpPrefix = "rexp#"

	// RoleNone matches any role.
	RoleNone = "none"
	// RoleAlert matches any role; regular expressions of an alert step test
	// the element value instead of its name.
	RoleAlert = "alert"
	// RoleContainer is the generic container role used by the transparent
	// container fallbacks of the resolver.
	RoleContainer = "grouping"
)

// PathMode selects how occurrences are assigned when a path string is parsed.
type PathMode int

const (
	// ModeIndexed honours the numeric occurrence prefixes of each step
	// (default 1: first breadth-first match).
	ModeIndexed PathMode = iota
	// ModeDepthFirst forces every step to the depth-first strategy.
	ModeDepthFirst
)

// PathStep is one level of UI-tree descent.
//
// Occurrence selects the search strategy: > 0 is the breadth-first Nth match,
// 0 is index discovery (the found index is bound to VarID), < 0 is depth-first.
type PathStep struct {
	Name       string
	Role       string
	Occurrence int
	VarID      string

	Next *PathStep
	Prev *PathStep
}

// IsTerminal reports whether this is the last step of the chain.
func (s *PathStep) IsTerminal() bool {
	return s.Next == nil
}

// Steps returns the chain from this step on, in order.
func (s *PathStep) Steps() []*PathStep {
	var out []*PathStep
	for cur := s; cur != nil; cur = cur.Next {
		out = append(out, cur)
	}
	return out
}

// Len returns the number of steps from this step on.
func (s *PathStep) Len() int {
	n := 0
	for cur := s; cur != nil; cur = cur.Next {
		n++
	}
	return n
}

// Last returns the terminal step.
func (s *PathStep) Last() *PathStep {
	cur := s
	for cur != nil && cur.Next != nil {
		cur = cur.Next
	}
	return cur
}

// Label renders a single step in path syntax.
func (s *PathStep) Label() string {
	name := strings.ReplaceAll(s.Name, "/", "//")
	if s.Role == RoleNone && s.Occurrence == 1 && s.VarID == "" && !strings.Contains(s.Name, ":") {
		return name
	}
	var prefix string
	switch {
	case s.Occurrence == 0 && s.VarID != "":
		prefix = "0@" + s.VarID + " "
	case s.Occurrence != 1 && s.Occurrence >= 0:
		prefix = strconv.Itoa(s.Occurrence)
	}
	return prefix + s.Role + ":" + name
}

// String renders the chain from this step on in path syntax.
func (s *PathStep) String() string {
	labels := make([]string, 0, s.Len())
	for _, step := range s.Steps() {
		labels = append(labels, step.Label())
	}
	return strings.Join(labels, "/")
}

// ParsePath builds a step chain from a GUI path string.
//
// Steps are separated by '/'; a literal '/' is written '//'. A step is either
// a bare name (any role) or "role:name". In the typed form a leading decimal
// number selects the occurrence and "0@var " asks for index discovery with
// the found index bound to var. Variables must already be expanded.
func ParsePath(text string, mode PathMode) (*PathStep, error) {
	segments := splitPath(text)
	if len(segments) == 0 {
		return nil, fmt.Errorf("empty gui path")
	}

	var head, tail *PathStep
	for _, seg := range segments {
		step, err := parseStep(seg)
		if err != nil {
			return nil, fmt.Errorf("invalid step %q in %q: %w", seg, text, err)
		}
		if mode == ModeDepthFirst {
			step.Occurrence = -1
		}
		if head == nil {
			head = step
		} else {
			tail.Next = step
			step.Prev = tail
		}
		tail = step
	}
	return head, nil
}

func splitPath(text string) []string {
	var segments []string
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '/' {
			sb.WriteByte(c)
			continue
		}
		if i+1 < len(text) && text[i+1] == '/' {
			sb.WriteByte('/')
			i++
			continue
		}
		if sb.Len() > 0 {
			segments = append(segments, sb.String())
		}
		sb.Reset()
	}
	if sb.Len() > 0 {
		segments = append(segments, sb.String())
	}
	return segments
}

func parseStep(seg string) (*PathStep, error) {
	step := &PathStep{Role: RoleNone, Occurrence: 1}

	colon := strings.IndexByte(seg, ':')
	if colon < 0 {
		step.Name = seg
		return step, nil
	}

	head, name := seg[:colon], seg[colon+1:]
	step.Name = name

	digits := 0
	for digits < len(head) && head[digits] >= '0' && head[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		n, err := strconv.Atoi(head[:digits])
		if err != nil {
			return nil, err
		}
		step.Occurrence = n
		head = head[digits:]
	}

	if strings.HasPrefix(head, "@") {
		if step.Occurrence != 0 {
			return nil, fmt.Errorf("variable binding requires occurrence 0")
		}
		head = head[1:]
		end := strings.IndexByte(head, ' ')
		if end < 0 {
			step.VarID, head = head, ""
		} else {
			step.VarID, head = head[:end], head[end+1:]
		}
		if step.VarID == "" {
			return nil, fmt.Errorf("empty variable name")
		}
	}

	if role := strings.TrimSpace(head); role != "" {
		step.Role = role
	}
	return step, nil
}
