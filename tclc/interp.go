package tclc

import (
	"strconv"
	"strings"
)

// CommandProc is the calling convention for host-registered commands. The
// runtime passes the client token supplied at registration, the interpreter,
// and the argument vector as plain text (argv[0] is the command name).
type CommandProc func(in *Interp, clientData uintptr, argv []string) Result

// command is an entry in an interpreter's command table.
type command struct {
	proc       CommandProc
	clientData uintptr
	deleteProc func(clientData uintptr)
}

// Interp is one evaluator context. Interpreters are not safe for concurrent
// use; all evaluation against a single interpreter is strictly sequential.
type Interp struct {
	rt            *Runtime
	result        Obj // interpreter holds one reference
	vars          map[string]Obj
	arrays        map[string]map[string]Obj
	commands      map[string]*command
	preserveCount int
	deletePending bool
	deleted       bool
}

// CreateInterp creates a new interpreter bound to the runtime.
func (rt *Runtime) CreateInterp() *Interp {
	in := &Interp{
		rt:       rt,
		vars:     make(map[string]Obj),
		arrays:   make(map[string]map[string]Obj),
		commands: make(map[string]*command),
	}
	in.result = rt.NewStringObj("")
	rt.IncrRefCount(in.result)
	return in
}

// Runtime returns the runtime this interpreter was created from.
func (in *Interp) Runtime() *Runtime { return in.rt }

// Deleted reports whether the interpreter has been torn down.
func (in *Interp) Deleted() bool { return in.deleted }

// Preserve pins the interpreter so that a deletion request is deferred
// until the matching [Interp.Release].
func (in *Interp) Preserve() {
	in.preserveCount++
}

// Release drops a pin taken by [Interp.Preserve]; if deletion was requested
// while pinned and this was the last pin, the interpreter is torn down.
func (in *Interp) Release() {
	if in.preserveCount > 0 {
		in.preserveCount--
	}
	if in.deletePending && in.preserveCount == 0 {
		in.free()
	}
}

// DeleteInterp requests deletion. The interpreter is torn down immediately
// unless preserved, in which case teardown happens on the final Release.
func (in *Interp) DeleteInterp() {
	if in.deleted {
		return
	}
	in.deletePending = true
	if in.preserveCount == 0 {
		in.free()
	}
}

func (in *Interp) free() {
	if in.deleted {
		return
	}
	in.deleted = true
	for name := range in.commands {
		in.deleteCommandEntry(name)
	}
	for _, h := range in.vars {
		in.rt.DecrRefCount(h)
	}
	for _, elems := range in.arrays {
		for _, h := range elems {
			in.rt.DecrRefCount(h)
		}
	}
	in.vars = nil
	in.arrays = nil
	in.rt.DecrRefCount(in.result)
	in.result = 0
}

// -----------------------------------------------------------------------------
// Result slot
// -----------------------------------------------------------------------------

// SetObjResult installs h as the interpreter's result, taking a reference.
func (in *Interp) SetObjResult(h Obj) {
	if in.deleted || h == in.result {
		return
	}
	in.rt.IncrRefCount(h)
	if in.result != 0 {
		in.rt.DecrRefCount(in.result)
	}
	in.result = h
}

// SetResultString installs a string result.
func (in *Interp) SetResultString(s string) {
	in.SetObjResult(in.rt.NewStringObj(s))
}

// GetObjResult returns the current result object. The reference stays with
// the interpreter; callers that keep the object must take their own.
func (in *Interp) GetObjResult() Obj { return in.result }

// ResultString returns the current result as text.
func (in *Interp) ResultString() string {
	return in.rt.GetStringFromObj(in.result)
}

// ResetResult clears the result to the empty string.
func (in *Interp) ResetResult() {
	in.SetResultString("")
}

// errorf sets an error message as the result and returns the Error code.
func (in *Interp) errorf(msg string) Result {
	in.SetResultString(msg)
	return Error
}

// -----------------------------------------------------------------------------
// Variables
// -----------------------------------------------------------------------------

// SetVar2 binds the variable to value. A non-empty index addresses an array
// element. The variable takes a reference on the value.
func (in *Interp) SetVar2(name, index string, value Obj) {
	in.rt.IncrRefCount(value)
	if index == "" {
		if old, ok := in.vars[name]; ok {
			in.rt.DecrRefCount(old)
		}
		in.vars[name] = value
		return
	}
	elems := in.arrays[name]
	if elems == nil {
		elems = make(map[string]Obj)
		in.arrays[name] = elems
	}
	if old, ok := elems[index]; ok {
		in.rt.DecrRefCount(old)
	}
	elems[index] = value
}

// GetVar2 returns the variable's value object, without transferring a
// reference. The error message follows the runtime's own grammar.
func (in *Interp) GetVar2(name, index string) (Obj, error) {
	if index == "" {
		if h, ok := in.vars[name]; ok {
			return h, nil
		}
	} else if elems := in.arrays[name]; elems != nil {
		if h, ok := elems[index]; ok {
			return h, nil
		}
	}
	return 0, &ValueError{Msg: "can't read " + strconv.Quote(varDisplayName(name, index)) + ": no such variable"}
}

// UnsetVar2 removes the variable. A missing variable is an error unless
// noComplain is set, in which case the call succeeds silently.
func (in *Interp) UnsetVar2(name, index string, noComplain bool) error {
	if index == "" {
		if h, ok := in.vars[name]; ok {
			in.rt.DecrRefCount(h)
			delete(in.vars, name)
			return nil
		}
	} else if elems := in.arrays[name]; elems != nil {
		if h, ok := elems[index]; ok {
			in.rt.DecrRefCount(h)
			delete(elems, index)
			return nil
		}
	}
	if noComplain {
		return nil
	}
	return &ValueError{Msg: "can't unset " + strconv.Quote(varDisplayName(name, index)) + ": no such variable"}
}

// VarExists reports whether the variable is currently bound.
func (in *Interp) VarExists(name, index string) bool {
	if index == "" {
		_, ok := in.vars[name]
		return ok
	}
	elems := in.arrays[name]
	if elems == nil {
		return false
	}
	_, ok := elems[index]
	return ok
}

func varDisplayName(name, index string) string {
	if index == "" {
		return name
	}
	return name + "(" + index + ")"
}

// splitVarName splits an embedded array reference "name(index)" into its
// two parts. Names without a trailing ")" are returned unchanged.
func splitVarName(s string) (name, index string) {
	if len(s) > 1 && s[len(s)-1] == ')' {
		if open := strings.IndexByte(s, '('); open >= 0 {
			return s[:open], s[open+1 : len(s)-1]
		}
	}
	return s, ""
}

// -----------------------------------------------------------------------------
// Commands
// -----------------------------------------------------------------------------

// CreateCommand registers a command. If a command with the same name already
// exists it is deleted first (its delete procedure runs). deleteProc, if
// non-nil, is invoked with clientData when the command is removed.
func (in *Interp) CreateCommand(name string, proc CommandProc, clientData uintptr, deleteProc func(uintptr)) {
	if in.deleted {
		return
	}
	in.deleteCommandEntry(name)
	in.commands[name] = &command{proc: proc, clientData: clientData, deleteProc: deleteProc}
}

// DeleteCommand removes a command, running its delete procedure. It reports
// whether the command existed.
func (in *Interp) DeleteCommand(name string) bool {
	_, ok := in.commands[name]
	in.deleteCommandEntry(name)
	return ok
}

func (in *Interp) deleteCommandEntry(name string) {
	c, ok := in.commands[name]
	if !ok {
		return
	}
	delete(in.commands, name)
	if c.deleteProc != nil {
		c.deleteProc(c.clientData)
	}
}

// CommandExists reports whether the named command is registered.
func (in *Interp) CommandExists(name string) bool {
	_, ok := in.commands[name]
	return ok
}

// EvalObjv evaluates a single command given as an argument vector. The words
// are used directly; no re-parsing or substitution happens. The result is
// left in the interpreter's result slot.
func (in *Interp) EvalObjv(objv []Obj) Result {
	if in.deleted {
		return Error
	}
	if len(objv) == 0 {
		in.ResetResult()
		return OK
	}
	name := in.rt.GetStringFromObj(objv[0])
	if c, ok := in.commands[name]; ok {
		argv := make([]string, len(objv))
		for i, h := range objv {
			argv[i] = in.rt.GetStringFromObj(h)
		}
		in.ResetResult()
		return c.proc(in, c.clientData, argv)
	}
	if b, ok := builtins[name]; ok {
		in.ResetResult()
		return b(in, objv)
	}
	return in.errorf("invalid command name " + strconv.Quote(name))
}
