package tclbind

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/tclbind/tclbind/tclc"
)

// CommandFunc is a host callable invocable from scripts. It receives the
// command name and the argument words as plain text, the runtime's calling
// convention for command procedures.
type CommandFunc func(name string, args []string) Result

// Result is what a CommandFunc hands back: a completion code plus an
// optional result value. The zero Result is OK with an empty result.
type Result struct {
	code  tclc.Result
	value any
}

// OK returns a successful result carrying v.
func OK(v any) Result { return Result{code: tclc.OK, value: v} }

// Error returns a failing result with msg as the error text.
func Error(msg string) Result { return Result{code: tclc.Error, value: msg} }

// Errorf returns a failing result with a formatted error text.
func Errorf(format string, args ...any) Result {
	return Error(fmt.Sprintf(format, args...))
}

// Code returns a result with an explicit completion code, for callables
// that need RETURN, BREAK or CONTINUE semantics.
func Code(code tclc.Result, v any) Result { return Result{code: code, value: v} }

// pins keeps registered callables reachable for as long as the runtime
// holds their identity token. Entries are reference counted; the runtime's
// command-deletion callback drops the count and the entry goes away when
// it reaches zero. Mutations are single-step under the lock so a
// finalizer-triggered release never observes a half-updated entry.
var pins struct {
	mu       sync.Mutex
	table    map[uintptr]*pinEntry
	next     uintptr
	counters map[string]int
}

type pinEntry struct {
	fn    CommandFunc
	count int
}

func pinCallable(fn CommandFunc) uintptr {
	pins.mu.Lock()
	defer pins.mu.Unlock()
	if pins.table == nil {
		pins.table = make(map[uintptr]*pinEntry)
	}
	pins.next++
	pins.table[pins.next] = &pinEntry{fn: fn, count: 1}
	return pins.next
}

func unpinCallable(token uintptr) {
	pins.mu.Lock()
	if e := pins.table[token]; e != nil {
		e.count--
		if e.count <= 0 {
			delete(pins.table, token)
		}
	}
	pins.mu.Unlock()
}

func pinnedCallable(token uintptr) CommandFunc {
	pins.mu.Lock()
	defer pins.mu.Unlock()
	if e := pins.table[token]; e != nil {
		return e.fn
	}
	return nil
}

// generateName produces names like "hostcmd1", "hostcmd2" from a
// per-prefix counter. Counters are monotonic within a prefix only.
func generateName(prefix string) string {
	pins.mu.Lock()
	defer pins.mu.Unlock()
	if pins.counters == nil {
		pins.counters = make(map[string]int)
	}
	pins.counters[prefix]++
	return prefix + strconv.Itoa(pins.counters[prefix])
}

// RegisterCommand makes fn invocable from scripts under name. An empty
// name generates one. The callable is pinned before the identity token is
// handed to the runtime, so it cannot be collected between registration
// and first invocation. Returns the name the command was registered under.
func (p *Interp) RegisterCommand(name string, fn CommandFunc) string {
	if name == "" {
		name = generateName("hostcmd")
	}
	token := pinCallable(fn)
	p.in.CreateCommand(name, commandTrampoline, token, unpinCallable)
	return name
}

// RegisterCallback registers fn under a generated name and returns it.
// This is how callables become values: the name is their representation.
func (p *Interp) RegisterCallback(fn CommandFunc) string {
	return p.RegisterCommand("", fn)
}

// commandTrampoline is the single CommandProc behind every registered
// callable. It resolves the pinned callable, invokes it, and installs its
// result. A panic in the callable is converted to an ERROR completion with
// a marked message; it must never unwind into the runtime's call path.
func commandTrampoline(in *tclc.Interp, token uintptr, argv []string) (code tclc.Result) {
	defer func() {
		if r := recover(); r != nil {
			in.SetResultString(callbackErrorPrefix + fmt.Sprint(r))
			code = tclc.Error
		}
	}()

	fn := pinnedCallable(token)
	if fn == nil {
		in.SetResultString("command was deleted")
		return tclc.Error
	}
	res := fn(argv[0], argv[1:])
	return installResult(in, res)
}

// installResult writes a callable's result into the interpreter's result
// slot and returns the completion code.
func installResult(in *tclc.Interp, res Result) tclc.Result {
	if res.value == nil {
		in.ResetResult()
		return res.code
	}
	if res.code == tclc.Error {
		in.SetResultString(fmt.Sprint(res.value))
		return tclc.Error
	}
	p := bridgeFor(in)
	if p == nil {
		in.SetResultString(fmt.Sprint(res.value))
		return res.code
	}
	h, err := p.FromHost(res.value)
	if err != nil {
		in.SetResultString(err.Error())
		return tclc.Error
	}
	in.SetObjResult(h.obj)
	if _, caller := res.value.(*Handle); !caller {
		h.Release()
	}
	return res.code
}
