package guipath

import (
	"regexp"
	"strings"
	"sync"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
)

var patterns sync.Map // string -> *regexp.Regexp, nil when invalid

// Matches reports whether el satisfies both the name and role patterns of step.
//
// A "rexp#" name is a regular expression that must match the whole subject:
// "rexp#Save" does not match "Save As...", "rexp#Save.*" does. The subject is
// the element name, or its value for the alert role.
func Matches(step *domain.PathStep, el ports.Element) bool {
	if step == nil || el == nil {
		return false
	}
	return matchName(step, el) && matchRole(step, el)
}

func matchName(step *domain.PathStep, el ports.Element) bool {
	switch name := step.Name; {
	case name == "" || name == domain.NameAny:
		return true
	case name == domain.NameNameless:
		return el.Name() == ""
	case strings.HasPrefix(name, domain.RegexpPrefix):
		re := compile(strings.TrimPrefix(name, domain.RegexpPrefix))
		if re == nil {
			return false
		}
		subject := el.Name()
		if step.Role == domain.RoleAlert {
			subject = el.Value()
		}
		return re.MatchString(subject)
	default:
		return el.Name() == name
	}
}

func matchRole(step *domain.PathStep, el ports.Element) bool {
	switch step.Role {
	case "", domain.RoleNone, domain.RoleAlert:
		return true
	default:
		return el.Role() == step.Role
	}
}

// compile anchors the expression so it must match the whole subject.
func compile(expr string) *regexp.Regexp {
	if cached, ok := patterns.Load(expr); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		patterns.Store(expr, (*regexp.Regexp)(nil))
		return nil
	}
	patterns.Store(expr, re)
	return re
}
