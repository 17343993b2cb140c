package tclbind

import (
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tclbind/tclbind/tclc"
)

// Interp owns one evaluator context. A transient Interp (from New) deletes
// its evaluator when the wrapper is collected; a permanent one (from
// NewPermanent, or the process-wide Default) is never auto-deleted.
//
// Interpreters are single-threaded: all evaluation and variable access
// against one Interp must come from one goroutine at a time.
type Interp struct {
	rt        *tclc.Runtime
	in        *tclc.Interp
	permanent bool
	deleted   atomic.Bool
}

var (
	interpMu sync.Mutex
	// bridges maps an evaluator back to its wrapper, for callbacks invoked
	// from inside the runtime.
	bridges = make(map[*tclc.Interp]*Interp)
	// current is the implicit-interpreter stack. The top entry is what
	// free functions use when no explicit Interp is threaded through.
	current []*Interp

	defaultOnce   sync.Once
	defaultInterp *Interp
)

// New creates a transient interpreter with its own runtime. It is deleted
// automatically when the wrapper becomes unreachable.
func New() *Interp {
	p := newInterp(false)
	runtime.SetFinalizer(p, (*Interp).Delete)
	return p
}

// NewPermanent creates an interpreter that lives until Delete is called
// explicitly.
func NewPermanent() *Interp {
	return newInterp(true)
}

func newInterp(permanent bool) *Interp {
	rt := tclc.NewRuntime()
	in := rt.CreateInterp()
	in.Preserve()
	p := &Interp{rt: rt, in: in, permanent: permanent}
	interpMu.Lock()
	bridges[in] = p
	interpMu.Unlock()
	return p
}

// Default returns the process-wide permanent interpreter, creating it on
// first use.
func Default() *Interp {
	defaultOnce.Do(func() {
		defaultInterp = NewPermanent()
	})
	return defaultInterp
}

// Delete tears down the evaluator. Idempotent, and safe to race against
// the finalizer of a transient interpreter.
func (p *Interp) Delete() {
	if !p.deleted.CompareAndSwap(false, true) {
		return
	}
	runtime.SetFinalizer(p, nil)
	interpMu.Lock()
	delete(bridges, p.in)
	interpMu.Unlock()
	p.in.Release()
	p.in.DeleteInterp()
}

// Runtime returns the object runtime backing this interpreter.
func (p *Interp) Runtime() *tclc.Runtime { return p.rt }

// Raw returns the underlying evaluator, for callers that need runtime
// entry points the wrapper does not cover.
func (p *Interp) Raw() *tclc.Interp { return p.in }

// Deleted reports whether Delete has run.
func (p *Interp) Deleted() bool { return p.deleted.Load() }

// Current returns the interpreter implicitly in effect: the innermost
// evaluation in progress on this process, or Default when none is. It
// exists as a compatibility shim; prefer passing the Interp explicitly.
func Current() *Interp {
	interpMu.Lock()
	if n := len(current); n > 0 {
		p := current[n-1]
		interpMu.Unlock()
		return p
	}
	interpMu.Unlock()
	return Default()
}

// pushCurrent makes p the implicit interpreter and returns the restore
// function. The restore must run on every exit path, so callers defer it.
func (p *Interp) pushCurrent() func() {
	interpMu.Lock()
	current = append(current, p)
	interpMu.Unlock()
	return func() {
		interpMu.Lock()
		current = current[:len(current)-1]
		interpMu.Unlock()
	}
}

// bridgeFor returns the wrapper for a runtime-level interpreter, or nil.
func bridgeFor(in *tclc.Interp) *Interp {
	interpMu.Lock()
	defer interpMu.Unlock()
	return bridges[in]
}

// -----------------------------------------------------------------------------
// Evaluation
// -----------------------------------------------------------------------------

// Eval evaluates and projects the result to a host value. A single
// list-typed Handle is executed directly as one command, with no
// re-parsing or substitution. A single string argument is evaluated as a
// script, subject to the language's own substitution rules. Anything else
// builds one command from the arguments, positional first, then Named
// options expanded to flag pairs.
func (p *Interp) Eval(args ...any) (any, error) {
	if err := p.eval(args); err != nil {
		return nil, err
	}
	h := p.resultHandle()
	defer h.Release()
	return Project(h)
}

// EvalString evaluates like Eval and returns the result's text form.
func (p *Interp) EvalString(args ...any) (string, error) {
	if err := p.eval(args); err != nil {
		return "", err
	}
	return p.in.ResultString(), nil
}

// EvalHandle evaluates like Eval and returns an owning handle on the
// result object, preserving its internal representation.
func (p *Interp) EvalHandle(args ...any) (*Handle, error) {
	if err := p.eval(args); err != nil {
		return nil, err
	}
	return p.resultHandle(), nil
}

// EvalStatus is the non-throwing variant: it returns the raw completion
// code and the result text, whatever the code.
func (p *Interp) EvalStatus(args ...any) (tclc.Result, string) {
	err := p.eval(args)
	if re, ok := err.(*RuntimeError); ok {
		return re.Code, re.Msg
	}
	if err != nil {
		return tclc.Error, err.Error()
	}
	return tclc.OK, p.in.ResultString()
}

// resultHandle takes an owning handle on the current result.
func (p *Interp) resultHandle() *Handle {
	return Acquire(p.rt, p.in.GetObjResult())
}

func (p *Interp) eval(args []any) error {
	if p.deleted.Load() {
		return &RuntimeError{Code: tclc.Error, Msg: "interpreter was deleted"}
	}
	defer p.pushCurrent()()

	var res tclc.Result
	switch {
	case len(args) == 1 && isListHandle(args[0]):
		res = p.evalCommandHandle(args[0].(*Handle))
	case len(args) == 1:
		script, err := p.scriptText(args[0])
		if err != nil {
			return err
		}
		res = p.in.EvalScript(script)
	default:
		list := p.NewList()
		defer list.Release()
		if err := p.AppendArgs(list, args...); err != nil {
			return err
		}
		res = p.evalCommandHandle(list)
	}
	if res != tclc.OK {
		return p.statusError(res)
	}
	return nil
}

func isListHandle(v any) bool {
	h, ok := v.(*Handle)
	return ok && h.Kind() == KindList
}

// evalCommandHandle runs a list object as a single command vector. The
// words are pinned for the duration of the call; the list itself keeps
// them alive, but a command may rebind or drop the list mid-call.
func (p *Interp) evalCommandHandle(h *Handle) tclc.Result {
	elems, err := p.rt.ListObjGetElements(h.obj)
	if err != nil {
		p.in.SetResultString(err.Error())
		return tclc.Error
	}
	words := make([]tclc.Obj, len(elems))
	copy(words, elems)
	for _, w := range words {
		p.rt.IncrRefCount(w)
	}
	res := p.in.EvalObjv(words)
	for _, w := range words {
		p.rt.DecrRefCount(w)
	}
	runtime.KeepAlive(h)
	return res
}

// scriptText renders a single evaluation argument as script source.
func (p *Interp) scriptText(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case *Handle:
		return s.String(), nil
	}
	h, err := p.FromHost(v)
	if err != nil {
		return "", err
	}
	defer h.Release()
	return h.String(), nil
}

// statusError converts a non-OK completion code to a RuntimeError carrying
// the evaluator's result text.
func (p *Interp) statusError(res tclc.Result) error {
	msg := p.in.ResultString()
	if msg == "" {
		switch res {
		case tclc.Break:
			msg = `invoked "break" outside of a loop`
		case tclc.Continue:
			msg = `invoked "continue" outside of a loop`
		}
	}
	return &RuntimeError{Code: res, Msg: msg}
}

// -----------------------------------------------------------------------------
// Variables
// -----------------------------------------------------------------------------

// checkVarName rejects names the text-based variable entry points cannot
// represent. Names with embedded null bytes must be pre-wrapped as a
// Handle and set through script evaluation instead.
func checkVarName(name string) error {
	if strings.IndexByte(name, 0) >= 0 {
		return &ConversionError{Msg: "variable name contains an embedded null byte"}
	}
	return nil
}

// SetVar sets a scalar variable to the converted host value.
func (p *Interp) SetVar(name string, v any) error {
	return p.SetVarElem(name, "", v)
}

// SetVarElem sets an array element; an empty index means a scalar.
func (p *Interp) SetVarElem(name, index string, v any) error {
	if err := checkVarName(name); err != nil {
		return err
	}
	if err := checkVarName(index); err != nil {
		return err
	}
	obj, done, err := p.convert(v)
	if err != nil {
		return err
	}
	defer done()
	p.in.SetVar2(name, index, obj)
	return nil
}

// Var reads a variable and projects it to a host value.
func (p *Interp) Var(name string) (any, error) {
	return p.VarElem(name, "")
}

// VarElem reads an array element projected to a host value.
func (p *Interp) VarElem(name, index string) (any, error) {
	h, err := p.VarElemHandle(name, index)
	if err != nil {
		return nil, err
	}
	defer h.Release()
	return Project(h)
}

// VarString reads a variable's text form.
func (p *Interp) VarString(name string) (string, error) {
	h, err := p.VarElemHandle(name, "")
	if err != nil {
		return "", err
	}
	defer h.Release()
	return h.String(), nil
}

// VarHandle returns an owning handle on the variable's object.
func (p *Interp) VarHandle(name string) (*Handle, error) {
	return p.VarElemHandle(name, "")
}

// VarElemHandle returns an owning handle on an array element's object.
func (p *Interp) VarElemHandle(name, index string) (*Handle, error) {
	if err := checkVarName(name); err != nil {
		return nil, err
	}
	if err := checkVarName(index); err != nil {
		return nil, err
	}
	obj, err := p.in.GetVar2(name, index)
	if err != nil {
		return nil, &RuntimeError{Code: tclc.Error, Msg: err.Error()}
	}
	return Acquire(p.rt, obj), nil
}

// UnsetVar removes a variable. Unsetting an absent variable is an error
// unless noComplain is set, in which case it succeeds silently.
func (p *Interp) UnsetVar(name string, noComplain bool) error {
	return p.UnsetVarElem(name, "", noComplain)
}

// UnsetVarElem removes an array element.
func (p *Interp) UnsetVarElem(name, index string, noComplain bool) error {
	if err := checkVarName(name); err != nil {
		return err
	}
	if err := p.in.UnsetVar2(name, index, noComplain); err != nil {
		return &RuntimeError{Code: tclc.Error, Msg: err.Error()}
	}
	return nil
}

// VarExists reports whether the variable is currently set.
func (p *Interp) VarExists(name string) bool {
	if checkVarName(name) != nil {
		return false
	}
	return p.in.VarExists(name, "")
}
