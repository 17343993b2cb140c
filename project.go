package tclbind

import "github.com/tclbind/tclbind/tclc"

// Project converts the handle's value to a host value based on its current
// internal representation: bool, int32, int64, float64, string, or a slice
// for lists. List elements are projected recursively and the resulting
// slice is promoted to a uniform element type when all elements share a
// numeric family; any mixture stays []any.
func Project(h *Handle) (any, error) {
	return projectObj(h.rt, RegistryFor(h.rt), h.obj)
}

// Kind returns the handle's current representation kind without converting.
func (h *Handle) Kind() Kind {
	return RegistryFor(h.rt).Classify(h.rt, h.obj)
}

func projectObj(rt *tclc.Runtime, reg *Registry, obj tclc.Obj) (any, error) {
	switch reg.Classify(rt, obj) {
	case KindBoolean:
		v, err := rt.GetBooleanFromObj(obj)
		if err != nil {
			return nil, &ConversionError{Msg: err.Error()}
		}
		return v, nil
	case KindInt:
		v, err := rt.GetIntFromObj(obj)
		if err == nil {
			return v, nil
		}
		if reg.wideIsInt {
			// coinciding tags: the value may only fit the wide width
			w, werr := rt.GetWideFromObj(obj)
			if werr == nil {
				return w, nil
			}
		}
		return nil, &ConversionError{Msg: err.Error()}
	case KindWide:
		v, err := rt.GetWideFromObj(obj)
		if err != nil {
			return nil, &ConversionError{Msg: err.Error()}
		}
		return v, nil
	case KindDouble:
		v, err := rt.GetDoubleFromObj(obj)
		if err != nil {
			return nil, &ConversionError{Msg: err.Error()}
		}
		return v, nil
	case KindList:
		return projectList(rt, reg, obj)
	default:
		return rt.GetStringFromObj(obj), nil
	}
}

func projectList(rt *tclc.Runtime, reg *Registry, obj tclc.Obj) (any, error) {
	// elements are lent by the list; no references taken or dropped
	elems, err := rt.ListObjGetElements(obj)
	if err != nil {
		return nil, &ConversionError{Msg: err.Error()}
	}
	vals := make([]any, len(elems))
	for i, e := range elems {
		v, err := projectObj(rt, reg, e)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return promote(vals), nil
}

// promote collapses a projected element slice to a uniform type when every
// element belongs to the same family: integers promote to the widest
// member's width, floats to []float64, strings to []string. Integer/float
// mixtures, booleans, and nested lists stay heterogeneous.
func promote(vals []any) any {
	if len(vals) == 0 {
		return vals
	}
	allInt, anyWide := true, false
	allFloat, allString := true, true
	for _, v := range vals {
		switch v.(type) {
		case int32:
			allFloat, allString = false, false
		case int64:
			anyWide = true
			allFloat, allString = false, false
		case float64:
			allInt, allString = false, false
		case string:
			allInt, allFloat = false, false
		default:
			return vals
		}
	}
	switch {
	case allInt && anyWide:
		out := make([]int64, len(vals))
		for i, v := range vals {
			if n, ok := v.(int64); ok {
				out[i] = n
			} else {
				out[i] = int64(v.(int32))
			}
		}
		return out
	case allInt:
		out := make([]int32, len(vals))
		for i, v := range vals {
			out[i] = v.(int32)
		}
		return out
	case allFloat:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = v.(float64)
		}
		return out
	case allString:
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = v.(string)
		}
		return out
	}
	return vals
}
