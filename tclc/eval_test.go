package tclc_test

import (
	"strings"
	"testing"

	"github.com/tclbind/tclbind/tclc"
)

func newInterp(t *testing.T) *tclc.Interp {
	t.Helper()
	rt := tclc.NewRuntime()
	in := rt.CreateInterp()
	t.Cleanup(in.DeleteInterp)
	return in
}

func evalOK(t *testing.T, in *tclc.Interp, script string) string {
	t.Helper()
	if res := in.EvalScript(script); res != tclc.OK {
		t.Fatalf("eval %q: status %d, result %q", script, res, in.ResultString())
	}
	return in.ResultString()
}

func TestEvalSetAndSubstitute(t *testing.T) {
	in := newInterp(t)

	if got := evalOK(t, in, "set x 10"); got != "10" {
		t.Errorf("set result = %q, want %q", got, "10")
	}
	if got := evalOK(t, in, "set y $x"); got != "10" {
		t.Errorf("$x substitution = %q, want %q", got, "10")
	}
	if got := evalOK(t, in, `set msg "x is ${x}!"`); got != "x is 10!" {
		t.Errorf("quoted substitution = %q, want %q", got, "x is 10!")
	}
	if got := evalOK(t, in, "set z [set x]"); got != "10" {
		t.Errorf("bracket substitution = %q, want %q", got, "10")
	}
}

func TestEvalBracedWordIsLiteral(t *testing.T) {
	in := newInterp(t)

	evalOK(t, in, "set x 10")
	if got := evalOK(t, in, `set y {$x [set x]}`); got != "$x [set x]" {
		t.Errorf("braced word = %q, want it untouched", got)
	}
}

func TestEvalMultipleCommands(t *testing.T) {
	in := newInterp(t)

	if got := evalOK(t, in, "set a 1; set b 2\nset c 3"); got != "3" {
		t.Errorf("final result = %q, want %q", got, "3")
	}
	for name, want := range map[string]string{"a": "1", "b": "2", "c": "3"} {
		h, err := in.GetVar2(name, "")
		if err != nil {
			t.Fatalf("variable %q missing: %v", name, err)
		}
		if got := in.Runtime().GetStringFromObj(h); got != want {
			t.Errorf("variable %q = %q, want %q", name, got, want)
		}
	}
}

func TestEvalUnclosedArrayIndex(t *testing.T) {
	in := newInterp(t)

	evalOK(t, in, "set a(i) 1")
	for _, script := range []string{"set x $a(i", `set x "$a(i"`} {
		if res := in.EvalScript(script); res != tclc.Error {
			t.Fatalf("eval %q: status %d, want error", script, res)
		}
		if got := in.ResultString(); !strings.Contains(got, "missing close-paren") {
			t.Errorf("eval %q: result %q, want missing close-paren", script, got)
		}
	}
}

func TestEvalArrayElements(t *testing.T) {
	in := newInterp(t)

	evalOK(t, in, "set a(one) 1")
	evalOK(t, in, "set a(two) 2")
	if got := evalOK(t, in, "set a(one)"); got != "1" {
		t.Errorf("a(one) = %q, want %q", got, "1")
	}
	if got := evalOK(t, in, `set s "$a(two)!"`); got != "2!" {
		t.Errorf("array substitution = %q, want %q", got, "2!")
	}
}

func TestEvalWholeVarWordKeepsType(t *testing.T) {
	in := newInterp(t)
	rt := in.Runtime()

	list := rt.NewListObj(rt.NewIntObj(1), rt.NewIntObj(2))
	in.SetVar2("l", "", list)

	if got := evalOK(t, in, "llength $l"); got != "2" {
		t.Errorf("llength $l = %q, want %q", got, "2")
	}
	// the variable's object reached llength as a list, not as re-parsed text
	h, _ := in.GetVar2("l", "")
	if rt.GetObjType(h).Name() != "list" {
		t.Errorf("variable lost its list representation: %v", rt.GetObjType(h))
	}
}

func TestEvalUnknownCommand(t *testing.T) {
	in := newInterp(t)

	if res := in.EvalScript("nosuchcmd a b"); res != tclc.Error {
		t.Fatalf("status = %d, want Error", res)
	}
	if got := in.ResultString(); got != `invalid command name "nosuchcmd"` {
		t.Errorf("result = %q", got)
	}
}

func TestBuiltinListCommands(t *testing.T) {
	in := newInterp(t)

	if got := evalOK(t, in, "list 1 hello {2 3}"); got != "1 hello {2 3}" {
		t.Errorf("list = %q", got)
	}
	if got := evalOK(t, in, "llength {a b c}"); got != "3" {
		t.Errorf("llength = %q, want %q", got, "3")
	}
	if got := evalOK(t, in, "lindex {a b c} 1"); got != "b" {
		t.Errorf("lindex = %q, want %q", got, "b")
	}
	if got := evalOK(t, in, "lindex {a b c} 9"); got != "" {
		t.Errorf("out-of-range lindex = %q, want empty", got)
	}
	if got := evalOK(t, in, "concat {a b} {} {c}"); got != "a b c" {
		t.Errorf("concat = %q, want %q", got, "a b c")
	}
}

func TestBuiltinIncr(t *testing.T) {
	in := newInterp(t)

	if got := evalOK(t, in, "incr n"); got != "1" {
		t.Errorf("incr of unset = %q, want %q", got, "1")
	}
	if got := evalOK(t, in, "incr n 5"); got != "6" {
		t.Errorf("incr n 5 = %q, want %q", got, "6")
	}
}

func TestBuiltinUnset(t *testing.T) {
	in := newInterp(t)

	evalOK(t, in, "set x 1")
	evalOK(t, in, "unset x")
	if in.VarExists("x", "") {
		t.Error("x still exists after unset")
	}

	if res := in.EvalScript("unset x"); res != tclc.Error {
		t.Fatalf("unset of absent variable: status %d, want Error", res)
	}
	if got := in.ResultString(); !strings.Contains(got, `can't unset "x"`) {
		t.Errorf("result = %q", got)
	}
	evalOK(t, in, "unset -nocomplain x")
}

func TestControlStatusCodes(t *testing.T) {
	in := newInterp(t)

	tests := []struct {
		script string
		want   tclc.Result
	}{
		{"error boom", tclc.Error},
		{"return 42", tclc.Return},
		{"break", tclc.Break},
		{"continue", tclc.Continue},
	}
	for _, tt := range tests {
		if res := in.EvalScript(tt.script); res != tt.want {
			t.Errorf("eval %q: status %d, want %d", tt.script, res, tt.want)
		}
	}

	in.EvalScript("error boom")
	if got := in.ResultString(); got != "boom" {
		t.Errorf("error result = %q, want %q", got, "boom")
	}
	in.EvalScript("return 42")
	if got := in.ResultString(); got != "42" {
		t.Errorf("return result = %q, want %q", got, "42")
	}
}

func TestRegisteredCommand(t *testing.T) {
	in := newInterp(t)

	var gotArgv []string
	in.CreateCommand("probe", func(in *tclc.Interp, clientData uintptr, argv []string) tclc.Result {
		gotArgv = append([]string(nil), argv...)
		in.SetResultString("done")
		return tclc.OK
	}, 0, nil)

	if got := evalOK(t, in, "probe a b"); got != "done" {
		t.Errorf("result = %q, want %q", got, "done")
	}
	want := []string{"probe", "a", "b"}
	if len(gotArgv) != len(want) {
		t.Fatalf("argv = %v, want %v", gotArgv, want)
	}
	for i := range want {
		if gotArgv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, gotArgv[i], want[i])
		}
	}
}

func TestCommandDeleteProc(t *testing.T) {
	in := newInterp(t)

	deleted := false
	in.CreateCommand("tmp", func(in *tclc.Interp, clientData uintptr, argv []string) tclc.Result {
		return tclc.OK
	}, 7, func(clientData uintptr) {
		if clientData != 7 {
			t.Errorf("deleteProc clientData = %d, want 7", clientData)
		}
		deleted = true
	})

	if !in.DeleteCommand("tmp") {
		t.Fatal("DeleteCommand returned false")
	}
	if !deleted {
		t.Error("deleteProc did not run")
	}
	if in.CommandExists("tmp") {
		t.Error("command still registered after deletion")
	}
}

func TestInterpPreserveDefersDeletion(t *testing.T) {
	rt := tclc.NewRuntime()
	in := rt.CreateInterp()

	in.Preserve()
	in.DeleteInterp()
	if in.Deleted() {
		t.Fatal("interpreter deleted while preserved")
	}
	in.Release()
	if !in.Deleted() {
		t.Error("interpreter not deleted after final release")
	}
}
