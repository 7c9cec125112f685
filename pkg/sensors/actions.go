package sensors

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/guipath"
)

// Action kinds registered by New.
const (
	ActClick  = "click"
	ActSet    = "set"
	ActUnset  = "unset"
	ActSelect = "select"
	ActMark   = "mark"
	ActInvoke = "invoke"
	ActLog    = "log"
	ActWait   = "wait"
)

func (k *Kit) registerActions() {
	k.registry.RegisterAction(ActClick, k.click)
	k.registry.RegisterAction(ActSet, k.set)
	k.registry.RegisterAction(ActUnset, k.unset)
	k.registry.RegisterAction(ActSelect, k.selectNode)
	k.registry.RegisterAction(ActMark, k.mark)
	k.registry.RegisterAction(ActInvoke, k.invoke)
	k.registry.RegisterAction(ActLog, k.log)
	k.registry.RegisterAction(ActWait, k.wait)
}

// click opens every intermediate element of the path and then triggers the
// target, with an offset click when x or y is given.
func (k *Kit) click(ctx context.Context, a *domain.Record) error {
	v := &guipath.ClickVisitor{}
	el, err := k.locate(a, domain.ModeIndexed, v)
	if err != nil {
		return err
	}
	for _, e := range v.Errors {
		k.logger.DebugContext(ctx, "intermediate click failed", "err", e)
	}
	if el == nil {
		return fmt.Errorf("click: %s: target not found", a)
	}

	xs, hasX := k.optional(a, "x")
	ys, hasY := k.optional(a, "y")
	if !hasX && !hasY {
		return el.DoDefaultAction()
	}
	dx, dy, err := offsets(xs, ys)
	if err != nil {
		return err
	}
	return el.ClickAt(dx, dy)
}

func offsets(xs, ys string) (int, int, error) {
	var dx, dy int
	var err error
	if xs != "" {
		if dx, err = strconv.Atoi(xs); err != nil {
			return 0, 0, fmt.Errorf("click: invalid x %q", xs)
		}
	}
	if ys != "" {
		if dy, err = strconv.Atoi(ys); err != nil {
			return 0, 0, fmt.Errorf("click: invalid y %q", ys)
		}
	}
	return dx, dy, nil
}

// set assigns a variable. The name may be dotted or the sub-field given
// separately through "field".
func (k *Kit) set(_ context.Context, a *domain.Record) error {
	ref, err := k.require(a, "name")
	if err != nil {
		return err
	}
	name, field := splitVar(ref)
	if f, ok := k.optional(a, "field"); ok {
		field = f
	}
	value, _ := k.optional(a, "value")
	k.vars.SetDotted(name, field, value)
	return nil
}

func (k *Kit) unset(_ context.Context, a *domain.Record) error {
	ref, err := k.require(a, "name")
	if err != nil {
		return err
	}
	name, field := splitVar(ref)
	if f, ok := k.optional(a, "field"); ok {
		field = f
	}
	if field == "" {
		k.vars.Unset(name)
		return nil
	}
	k.vars.SetDotted(name, field, "")
	return nil
}

// selectNode binds the element at path to id.
func (k *Kit) selectNode(_ context.Context, a *domain.Record) error {
	id, err := k.require(a, "id")
	if err != nil {
		return err
	}
	el, err := k.locate(a, domain.ModeIndexed, guipath.NopVisitor{})
	if err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("select: %s: target not found", a)
	}
	mark, _ := k.optional(a, "mark")
	k.vars.BindNode(id, el, mark)
	return nil
}

func (k *Kit) mark(_ context.Context, a *domain.Record) error {
	id, err := k.require(a, "id")
	if err != nil {
		return err
	}
	mark, _ := k.optional(a, "mark")
	if !k.vars.SetMark(id, mark) {
		return fmt.Errorf("mark: node %q is not bound", id)
	}
	return nil
}

func (k *Kit) invoke(_ context.Context, a *domain.Record) error {
	id, err := k.require(a, "id")
	if err != nil {
		return err
	}
	b, ok := k.vars.GetNode(id)
	if !ok || b.Element == nil {
		return fmt.Errorf("invoke: node %q is not bound", id)
	}
	return b.Element.DoDefaultAction()
}

func (k *Kit) log(ctx context.Context, a *domain.Record) error {
	msg, _ := k.optional(a, "message")
	k.logger.InfoContext(ctx, msg, "action", ActLog)
	return nil
}

func (k *Kit) wait(ctx context.Context, a *domain.Record) error {
	raw, err := k.require(a, "for")
	if err != nil {
		return err
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
