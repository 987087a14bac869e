package faketcl

import (
	"fmt"
	"strings"
)

type word struct {
	text  string
	subst bool
}

func (r *Runtime) eval(interp uintptr, script string) int32 {
	st := r.interps[interp]
	if st == nil {
		return Error
	}
	cmds, err := parseScript(script)
	if err != nil {
		r.setResult(st, err.Error())
		return Error
	}
	r.setResult(st, "")
	for _, words := range cmds {
		args := make([]string, len(words))
		for i, w := range words {
			if !w.subst {
				args[i] = w.text
				continue
			}
			v, err := r.substitute(st, w.text)
			if err != nil {
				r.setResult(st, err.Error())
				return Error
			}
			args[i] = v
		}
		if code := r.invoke(interp, st, args); code != OK {
			return code
		}
	}
	return OK
}

func (r *Runtime) invoke(interp uintptr, st *interpState, args []string) int32 {
	if e := st.cmds[args[0]]; e != nil {
		return r.call(interp, st, e, args)
	}

	switch args[0] {
	case "set":
		switch len(args) {
		case 2:
			v, ok := st.vars[args[1]]
			if !ok {
				r.setResult(st, fmt.Sprintf("can't read %q: no such variable", args[1]))
				return Error
			}
			st.result = v
			return OK
		case 3:
			v := r.newObj(args[2])
			st.vars[args[1]] = v
			st.result = v
			return OK
		}
		r.setResult(st, `wrong # args: should be "set varName ?newValue?"`)
		return Error
	case "error":
		if len(args) != 2 {
			r.setResult(st, `wrong # args: should be "error message"`)
			return Error
		}
		r.setResult(st, args[1])
		return Error
	case "return":
		r.setResult(st, strings.Join(args[1:], " "))
		return Return
	case "break":
		return Break
	case "continue":
		return Continue
	}

	r.setResult(st, fmt.Sprintf("invalid command name %q", args[0]))
	return Error
}

func (r *Runtime) substitute(st *interpState, s string) (string, error) {
	if !strings.ContainsAny(s, `$\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
		case c == '$' && i+1 < len(s):
			var name string
			if s[i+1] == '{' {
				end := strings.IndexByte(s[i+2:], '}')
				if end < 0 {
					return "", fmt.Errorf("missing close-brace for variable name")
				}
				name = s[i+2 : i+2+end]
				i += end + 2
			} else {
				j := i + 1
				for j < len(s) && isNameChar(s[j]) {
					j++
				}
				if j == i+1 {
					b.WriteByte('$')
					continue
				}
				name = s[i+1 : j]
				i = j - 1
			}
			v, ok := st.vars[name]
			if !ok {
				return "", fmt.Errorf("can't read %q: no such variable", name)
			}
			b.WriteString(r.str(v))
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func isNameChar(c byte) bool {
	return c == '_' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// parseScript splits a script into commands of words. Braced words are
// literal; bare and quoted words are subject to substitution.
func parseScript(script string) ([][]word, error) {
	var (
		cmds    [][]word
		current []word
	)
	flush := func() {
		if len(current) > 0 {
			cmds = append(cmds, current)
			current = nil
		}
	}

	i := 0
	for i < len(script) {
		c := script[i]
		switch {
		case c == '\n' || c == ';':
			flush()
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#' && len(current) == 0:
			for i < len(script) && script[i] != '\n' {
				i++
			}
		case c == '{':
			depth := 0
			start := i + 1
			for ; i < len(script); i++ {
				if script[i] == '{' {
					depth++
				} else if script[i] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			if depth != 0 {
				return nil, fmt.Errorf("missing close-brace")
			}
			current = append(current, word{text: script[start:i]})
			i++
		case c == '"':
			start := i + 1
			i++
			for i < len(script) && script[i] != '"' {
				if script[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(script) {
				return nil, fmt.Errorf("missing \"")
			}
			current = append(current, word{text: script[start:i], subst: true})
			i++
		default:
			start := i
			for i < len(script) && !strings.ContainsRune(" \t\r\n;", rune(script[i])) {
				if script[i] == '\\' {
					i++
				}
				i++
			}
			if i > len(script) {
				i = len(script)
			}
			current = append(current, word{text: script[start:i], subst: true})
		}
	}
	flush()
	return cmds, nil
}
