package tclc

import "strings"

// EvalScript evaluates a script: commands separated by newlines or
// semicolons, with brace and quote grouping and $-variable and [command]
// substitution in unbraced words. The last command's result is left in the
// result slot. This is the runtime's own parser; callers that need to
// bypass substitution should build an argument vector and use
// [Interp.EvalObjv] instead.
func (in *Interp) EvalScript(script string) Result {
	if in.deleted {
		return Error
	}
	cmds, err := splitCommands(script)
	if err != nil {
		return in.errorf(err.Error())
	}
	in.ResetResult()
	for _, text := range cmds {
		words, err := in.parseWords(text)
		if err != nil {
			releaseWords(in.rt, words)
			return in.errorf(err.Error())
		}
		if len(words) == 0 {
			continue
		}
		res := in.EvalObjv(words)
		releaseWords(in.rt, words)
		if res != OK {
			return res
		}
	}
	return OK
}

// releaseWords drops the script's reference on each word object.
func releaseWords(rt *Runtime, words []Obj) {
	for _, w := range words {
		rt.DecrRefCount(w)
	}
}

// splitCommands splits a script into command strings at top-level newlines
// and semicolons.
func splitCommands(script string) ([]string, error) {
	var cmds []string
	depth := 0   // brace nesting
	bracket := 0 // bracket nesting
	inQuote := false
	start := 0
	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case c == '\\' && i+1 < len(script):
			i++
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == '[':
			bracket++
		case c == ']':
			if bracket > 0 {
				bracket--
			}
		case c == '"' && depth == 0:
			inQuote = true
		case (c == '\n' || c == ';') && depth == 0 && bracket == 0:
			cmds = append(cmds, script[start:i])
			start = i + 1
		}
	}
	if depth != 0 {
		return nil, &ValueError{Msg: "missing close-brace"}
	}
	if inQuote {
		return nil, &ValueError{Msg: "missing close-quote"}
	}
	if bracket != 0 {
		return nil, &ValueError{Msg: "missing close-bracket"}
	}
	return append(cmds, script[start:]), nil
}

// parseWords splits one command into word objects. Each returned word
// carries one reference owned by the caller. Braced words are literal;
// quoted and bare words undergo substitution. A bare word that is exactly
// one variable reference yields the variable's object itself, preserving
// its internal representation.
func (in *Interp) parseWords(text string) ([]Obj, error) {
	var words []Obj
	pos := 0
	for pos < len(text) {
		for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t') {
			pos++
		}
		if pos >= len(text) {
			break
		}
		if text[pos] == '#' && len(words) == 0 {
			break // comment line
		}
		var word Obj
		switch text[pos] {
		case '{':
			depth := 1
			start := pos + 1
			pos++
			for pos < len(text) && depth > 0 {
				if text[pos] == '{' {
					depth++
				} else if text[pos] == '}' {
					depth--
				}
				pos++
			}
			if depth != 0 {
				return words, &ValueError{Msg: "missing close-brace"}
			}
			word = in.rt.NewStringObj(text[start : pos-1])
		case '"':
			start := pos + 1
			pos++
			for pos < len(text) && text[pos] != '"' {
				if text[pos] == '\\' && pos+1 < len(text) {
					pos++
				}
				pos++
			}
			if pos >= len(text) {
				return words, &ValueError{Msg: "missing close-quote"}
			}
			sub, err := in.substitute(text[start:pos])
			if err != nil {
				return words, err
			}
			pos++
			word = in.rt.NewStringObj(sub)
		default:
			start := pos
			for pos < len(text) && text[pos] != ' ' && text[pos] != '\t' {
				if text[pos] == '\\' && pos+1 < len(text) {
					pos++
				} else if text[pos] == '[' {
					// a bracketed script is part of the word
					depth := 1
					pos++
					for pos < len(text) && depth > 0 {
						if text[pos] == '[' {
							depth++
						} else if text[pos] == ']' {
							depth--
						}
						pos++
					}
					continue
				}
				pos++
			}
			raw := text[start:pos]
			if h, ok := in.wholeVarWord(raw); ok {
				in.rt.IncrRefCount(h)
				words = append(words, h)
				continue
			}
			sub, err := in.substitute(raw)
			if err != nil {
				return words, err
			}
			word = in.rt.NewStringObj(sub)
		}
		in.rt.IncrRefCount(word)
		words = append(words, word)
	}
	return words, nil
}

// wholeVarWord resolves a bare word of the form $name or $name(index) to
// the variable's object, so that typed values survive substitution intact.
func (in *Interp) wholeVarWord(raw string) (Obj, bool) {
	if len(raw) < 2 || raw[0] != '$' {
		return 0, false
	}
	rest, consumed, err := scanVarName(raw[1:])
	if err != nil || consumed != len(raw)-1 || rest == "" {
		// an unclosed index falls through to substitute, which reports it
		return 0, false
	}
	name, index := splitVarName(rest)
	h, err := in.GetVar2(name, index)
	if err != nil {
		return 0, false
	}
	return h, true
}

// substitute performs $-variable, [command] and backslash substitution.
func (in *Interp) substitute(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '\\':
			if i+1 >= len(s) {
				b.WriteByte(c)
				i++
				break
			}
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i+1])
			}
			i += 2
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				end := strings.IndexByte(s[i+2:], '}')
				if end < 0 {
					return "", &ValueError{Msg: "missing close-brace for variable name"}
				}
				name, index := splitVarName(s[i+2 : i+2+end])
				h, err := in.GetVar2(name, index)
				if err != nil {
					return "", err
				}
				b.WriteString(in.rt.GetStringFromObj(h))
				i += 2 + end + 1
				break
			}
			varName, consumed, err := scanVarName(s[i+1:])
			if err != nil {
				return "", err
			}
			if consumed == 0 {
				b.WriteByte(c)
				i++
				break
			}
			name, index := splitVarName(varName)
			h, err := in.GetVar2(name, index)
			if err != nil {
				return "", err
			}
			b.WriteString(in.rt.GetStringFromObj(h))
			i += 1 + consumed
		case '[':
			depth := 1
			j := i + 1
			for j < len(s) && depth > 0 {
				if s[j] == '[' {
					depth++
				} else if s[j] == ']' {
					depth--
				}
				j++
			}
			if depth != 0 {
				return "", &ValueError{Msg: "missing close-bracket"}
			}
			if res := in.EvalScript(s[i+1 : j-1]); res != OK {
				return "", &ValueError{Msg: in.ResultString()}
			}
			b.WriteString(in.ResultString())
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// scanVarName consumes a variable name (letters, digits, underscores, with
// an optional trailing (index) part) and returns the name plus the number
// of bytes consumed. An opening '(' with no matching ')' is an error, like
// the other unclosed delimiters.
func scanVarName(s string) (string, int, error) {
	i := 0
	for i < len(s) && (isNameByte(s[i])) {
		i++
	}
	if i == 0 {
		return "", 0, nil
	}
	// optional array index
	if i < len(s) && s[i] == '(' {
		close := strings.IndexByte(s[i:], ')')
		if close < 0 {
			return "", 0, &ValueError{Msg: "missing close-paren"}
		}
		i += close + 1
	}
	return s[:i], i, nil
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// -----------------------------------------------------------------------------
// Builtin commands
// -----------------------------------------------------------------------------

// builtins is the runtime's own command set: enough to drive the bridge
// from scripts. Host-registered commands take precedence over builtins of
// the same name.
var builtins = map[string]func(*Interp, []Obj) Result{
	"set":      builtinSet,
	"unset":    builtinUnset,
	"list":     builtinList,
	"llength":  builtinLlength,
	"lindex":   builtinLindex,
	"concat":   builtinConcat,
	"incr":     builtinIncr,
	"error":    builtinError,
	"return":   builtinReturn,
	"break":    func(in *Interp, objv []Obj) Result { return Break },
	"continue": func(in *Interp, objv []Obj) Result { return Continue },
}

func builtinSet(in *Interp, objv []Obj) Result {
	switch len(objv) {
	case 2:
		name, index := splitVarName(in.rt.GetStringFromObj(objv[1]))
		h, err := in.GetVar2(name, index)
		if err != nil {
			return in.errorf(err.Error())
		}
		in.SetObjResult(h)
		return OK
	case 3:
		name, index := splitVarName(in.rt.GetStringFromObj(objv[1]))
		in.SetVar2(name, index, objv[2])
		in.SetObjResult(objv[2])
		return OK
	}
	return in.errorf(`wrong # args: should be "set varName ?newValue?"`)
}

func builtinUnset(in *Interp, objv []Obj) Result {
	args := objv[1:]
	noComplain := false
	if len(args) > 0 && in.rt.GetStringFromObj(args[0]) == "-nocomplain" {
		noComplain = true
		args = args[1:]
	}
	for _, a := range args {
		name, index := splitVarName(in.rt.GetStringFromObj(a))
		if err := in.UnsetVar2(name, index, noComplain); err != nil {
			return in.errorf(err.Error())
		}
	}
	in.ResetResult()
	return OK
}

func builtinList(in *Interp, objv []Obj) Result {
	in.SetObjResult(in.rt.NewListObj(objv[1:]...))
	return OK
}

func builtinLlength(in *Interp, objv []Obj) Result {
	if len(objv) != 2 {
		return in.errorf(`wrong # args: should be "llength list"`)
	}
	n, err := in.rt.ListObjLength(objv[1])
	if err != nil {
		return in.errorf(err.Error())
	}
	in.SetObjResult(in.rt.NewIntObj(int32(n)))
	return OK
}

func builtinLindex(in *Interp, objv []Obj) Result {
	if len(objv) != 3 {
		return in.errorf(`wrong # args: should be "lindex list index"`)
	}
	idx, err := in.rt.GetIntFromObj(objv[2])
	if err != nil {
		return in.errorf(err.Error())
	}
	h, err := in.rt.ListObjIndex(objv[1], int(idx))
	if err != nil {
		return in.errorf(err.Error())
	}
	if h == 0 {
		in.ResetResult()
		return OK
	}
	in.SetObjResult(h)
	return OK
}

func builtinConcat(in *Interp, objv []Obj) Result {
	parts := make([]string, 0, len(objv)-1)
	for _, h := range objv[1:] {
		s := strings.TrimSpace(in.rt.GetStringFromObj(h))
		if s != "" {
			parts = append(parts, s)
		}
	}
	in.SetResultString(strings.Join(parts, " "))
	return OK
}

func builtinIncr(in *Interp, objv []Obj) Result {
	if len(objv) != 2 && len(objv) != 3 {
		return in.errorf(`wrong # args: should be "incr varName ?increment?"`)
	}
	name, index := splitVarName(in.rt.GetStringFromObj(objv[1]))
	var cur int64
	if h, err := in.GetVar2(name, index); err == nil {
		v, err := in.rt.GetWideFromObj(h)
		if err != nil {
			return in.errorf(err.Error())
		}
		cur = v
	}
	step := int64(1)
	if len(objv) == 3 {
		v, err := in.rt.GetWideFromObj(objv[2])
		if err != nil {
			return in.errorf(err.Error())
		}
		step = v
	}
	result := in.rt.NewWideObj(cur + step)
	in.SetVar2(name, index, result)
	in.SetObjResult(result)
	return OK
}

func builtinError(in *Interp, objv []Obj) Result {
	if len(objv) != 2 {
		return in.errorf(`wrong # args: should be "error message"`)
	}
	in.SetObjResult(objv[1])
	return Error
}

func builtinReturn(in *Interp, objv []Obj) Result {
	if len(objv) > 2 {
		return in.errorf(`wrong # args: should be "return ?value?"`)
	}
	if len(objv) == 2 {
		in.SetObjResult(objv[1])
	} else {
		in.ResetResult()
	}
	return Return
}
