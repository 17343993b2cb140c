package tclbind

import (
	"fmt"
	"math"
	"runtime"

	"github.com/tclbind/tclbind/tclc"
)

// FromHost converts a host value to an owning Handle in this interpreter's
// runtime. The mapping is a closed set:
//
//   - bool
//   - signed and unsigned integers of any width, narrowed to the runtime's
//     native int width when the value fits, else its wide width
//   - float32/float64, normalized to the runtime's double type
//   - string, and fmt.Stringer (stringified first)
//   - *Handle, returned unchanged
//   - CommandFunc, registered as a generated command and represented as a
//     string naming it
//   - slices of the above, built as lists
//
// Anything else fails with UnsupportedTypeError. Byte slices are
// deliberately unsupported: there is no binary-safe representation at this
// layer.
func (p *Interp) FromHost(v any) (*Handle, error) {
	switch x := v.(type) {
	case *Handle:
		return x, nil
	case bool:
		return Acquire(p.rt, p.rt.NewBooleanObj(x)), nil
	case int:
		return p.fromInt64(int64(x)), nil
	case int8:
		return p.fromInt64(int64(x)), nil
	case int16:
		return p.fromInt64(int64(x)), nil
	case int32:
		return p.fromInt64(int64(x)), nil
	case int64:
		return p.fromInt64(x), nil
	case uint:
		return p.fromUint64(uint64(x))
	case uint8:
		return p.fromInt64(int64(x)), nil
	case uint16:
		return p.fromInt64(int64(x)), nil
	case uint32:
		return p.fromInt64(int64(x)), nil
	case uint64:
		return p.fromUint64(x)
	case uintptr:
		return p.fromUint64(uint64(x))
	case float32:
		return Acquire(p.rt, p.rt.NewDoubleObj(float64(x))), nil
	case float64:
		return Acquire(p.rt, p.rt.NewDoubleObj(x)), nil
	case string:
		return Acquire(p.rt, p.rt.NewStringObj(x)), nil
	case CommandFunc:
		name := p.RegisterCommand("", x)
		return Acquire(p.rt, p.rt.NewStringObj(name)), nil
	case func(name string, args []string) Result:
		name := p.RegisterCommand("", x)
		return Acquire(p.rt, p.rt.NewStringObj(name)), nil
	case fmt.Stringer:
		return Acquire(p.rt, p.rt.NewStringObj(x.String())), nil
	case []byte:
		return nil, &UnsupportedTypeError{Value: v}
	case []string:
		return p.listFrom(len(x), func(i int) any { return x[i] })
	case []int:
		return p.listFrom(len(x), func(i int) any { return x[i] })
	case []int32:
		return p.listFrom(len(x), func(i int) any { return x[i] })
	case []int64:
		return p.listFrom(len(x), func(i int) any { return x[i] })
	case []float64:
		return p.listFrom(len(x), func(i int) any { return x[i] })
	case []any:
		return p.listFrom(len(x), func(i int) any { return x[i] })
	}
	return nil, &UnsupportedTypeError{Value: v}
}

// FromHost converts using the implicit current interpreter. Prefer the
// Interp method; this shim exists for callers with no context to thread.
func FromHost(v any) (*Handle, error) {
	return Current().FromHost(v)
}

func (p *Interp) fromInt64(v int64) *Handle {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return Acquire(p.rt, p.rt.NewIntObj(int32(v)))
	}
	return Acquire(p.rt, p.rt.NewWideObj(v))
}

func (p *Interp) fromUint64(v uint64) (*Handle, error) {
	if v > math.MaxInt64 {
		return nil, &ConversionError{Msg: "integer value too large to represent"}
	}
	return p.fromInt64(int64(v)), nil
}

// convert returns the object for a host value plus a done func releasing
// any temporary the conversion created. When v is already a *Handle the
// caller keeps ownership and done only pins it for the duration.
func (p *Interp) convert(v any) (tclc.Obj, func(), error) {
	if h, ok := v.(*Handle); ok {
		return h.obj, func() { runtime.KeepAlive(h) }, nil
	}
	h, err := p.FromHost(v)
	if err != nil {
		return 0, nil, err
	}
	return h.obj, h.Release, nil
}

func (p *Interp) listFrom(n int, at func(int) any) (*Handle, error) {
	list := p.NewList()
	for i := 0; i < n; i++ {
		if err := p.Append(list, at(i)); err != nil {
			list.Release()
			return nil, err
		}
	}
	return list, nil
}
