package tclc

import (
	"errors"
	"strings"
)

// ErrShared is returned when an in-place mutation is attempted on an object
// whose reference count exceeds one. The caller must duplicate first.
var ErrShared = errors.New("cannot mutate a shared object")

// ListObjLength returns the number of elements in the list, shimmering a
// string representation if needed.
func (rt *Runtime) ListObjLength(h Obj) (int, error) {
	elems, err := rt.ListObjGetElements(h)
	if err != nil {
		return 0, err
	}
	return len(elems), nil
}

// ListObjGetElements returns the list's element handles. The elements are
// lent: no references are transferred, and the caller must not release them.
// They remain valid only while the list itself is alive.
func (rt *Runtime) ListObjGetElements(h Obj) ([]Obj, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	o := rt.objects[h]
	if o == nil {
		return nil, &ValueError{Msg: "invalid object handle"}
	}
	if o.typePtr == rt.listType {
		return o.elems, nil
	}
	return rt.shimmerListLocked(o)
}

// ListObjIndex returns the element at idx, or zero if out of bounds.
func (rt *Runtime) ListObjIndex(h Obj, idx int) (Obj, error) {
	elems, err := rt.ListObjGetElements(h)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(elems) {
		return 0, nil
	}
	return elems[idx], nil
}

// ListObjAppendElement appends elem to the list, taking a reference on it.
// Appending to a shared list fails with [ErrShared]; the string
// representation of the list is invalidated on success. The sharedness
// check and the append are one locked step, so a reference dropped or
// taken on another goroutine (a handle finalizer, typically) can never
// interleave with the mutation.
func (rt *Runtime) ListObjAppendElement(h Obj, elem Obj) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	o := rt.objects[h]
	if o == nil {
		return &ValueError{Msg: "invalid object handle"}
	}
	if o.refCount > 1 {
		return ErrShared
	}
	if o.typePtr != rt.listType {
		if _, err := rt.shimmerListLocked(o); err != nil {
			return err
		}
	}
	if eo := rt.objects[elem]; eo != nil {
		eo.refCount++
	}
	o.elems = append(o.elems, elem)
	o.hasBytes = false
	return nil
}

// shimmerListLocked converts a non-list object to the list representation
// by parsing its string form. The new element objects are owned by the
// list. Callers hold rt.mu.
func (rt *Runtime) shimmerListLocked(o *object) ([]Obj, error) {
	words, err := splitListString(rt.stringLocked(o))
	if err != nil {
		return nil, err
	}
	elems := make([]Obj, len(words))
	for i, w := range words {
		elems[i] = rt.allocLocked(&object{bytes: w, hasBytes: true, refCount: 1})
	}
	o.elems = elems
	o.typePtr = rt.listType
	return elems, nil
}

// splitListString parses a list string into element strings, honoring brace
// and quote grouping.
func splitListString(s string) ([]string, error) {
	var items []string
	pos := 0
	for pos < len(s) {
		for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\n') {
			pos++
		}
		if pos >= len(s) {
			break
		}
		var elem string
		switch s[pos] {
		case '{':
			depth := 1
			start := pos + 1
			pos++
			for pos < len(s) && depth > 0 {
				if s[pos] == '{' {
					depth++
				} else if s[pos] == '}' {
					depth--
				}
				pos++
			}
			if depth != 0 {
				return nil, &ValueError{Msg: "unmatched open brace in list"}
			}
			elem = s[start : pos-1]
		case '"':
			start := pos + 1
			pos++
			for pos < len(s) && s[pos] != '"' {
				if s[pos] == '\\' && pos+1 < len(s) {
					pos++
				}
				pos++
			}
			if pos >= len(s) {
				return nil, &ValueError{Msg: "unmatched open quote in list"}
			}
			elem = s[start:pos]
			pos++
		default:
			start := pos
			for pos < len(s) && s[pos] != ' ' && s[pos] != '\t' && s[pos] != '\n' {
				pos++
			}
			elem = s[start:pos]
		}
		items = append(items, elem)
	}
	return items, nil
}

// listStringLocked regenerates the string representation of a list object.
// Elements with whitespace or brace characters are braced; empty elements
// become {}. Callers hold rt.mu; element lookups recurse through
// stringLocked without re-locking.
func (rt *Runtime) listStringLocked(o *object) string {
	var b strings.Builder
	for i, eh := range o.elems {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quoteListElem(rt.stringLocked(rt.objects[eh])))
	}
	return b.String()
}

func quoteListElem(s string) string {
	if s == "" {
		return "{}"
	}
	if strings.ContainsAny(s, " \t\n{}") {
		return "{" + s + "}"
	}
	return s
}
