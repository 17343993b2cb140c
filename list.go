package tclbind

import (
	"errors"
	"strings"

	"github.com/tclbind/tclbind/tclc"
)

// Arg is a named option for AppendArgs and command-building evaluation.
// Named arguments expand to a flag token followed by the converted value.
type Arg struct {
	Name  string
	Value any
}

// Named pairs an option name with its value.
func Named(name string, value any) Arg {
	return Arg{Name: name, Value: value}
}

// NewList returns a handle on a fresh empty list object.
func (p *Interp) NewList() *Handle {
	return Acquire(p.rt, p.rt.NewListObj())
}

// Append converts v if it is not already a Handle and appends it to the
// list. Appending to a shared list fails with ListAppendError; the caller
// must Duplicate first.
func (p *Interp) Append(list *Handle, v any) error {
	obj, done, err := p.convert(v)
	if err != nil {
		return err
	}
	defer done()
	if err := p.rt.ListObjAppendElement(list.obj, obj); err != nil {
		if errors.Is(err, tclc.ErrShared) {
			return &ListAppendError{
				Msg: "cannot append to a shared list; duplicate it first",
				Err: &SharedObjectError{Op: "append to"},
			}
		}
		return &ListAppendError{Msg: err.Error()}
	}
	return nil
}

// AppendArgs appends positional arguments in order, then each Arg as two
// elements: a dash-prefixed flag token derived from its name, followed by
// its converted value. Named arguments keep the order they were given in,
// but callers should not depend on a particular order among them.
func (p *Interp) AppendArgs(list *Handle, args ...any) error {
	var named []Arg
	for _, a := range args {
		if na, ok := a.(Arg); ok {
			named = append(named, na)
			continue
		}
		if err := p.Append(list, a); err != nil {
			return err
		}
	}
	for _, na := range named {
		if err := p.Append(list, flagToken(na.Name)); err != nil {
			return err
		}
		if err := p.Append(list, na.Value); err != nil {
			return err
		}
	}
	return nil
}

// flagToken turns an option name into its flag form. One leading and one
// trailing underscore are stripped first, so names that collide with host
// keywords (for example "in_" or "_type") still map to the plain flag.
func flagToken(name string) string {
	name = strings.TrimPrefix(name, "_")
	name = strings.TrimSuffix(name, "_")
	return "-" + name
}
