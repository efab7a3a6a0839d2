package cmd

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one whitespace- or quote-delimited piece of a line.
type Token struct {
	Text   string
	Quoted bool
	// End is the byte offset just past the token in the lexed input.
	End int
}

// Flag is a flag supplied in a line. Explicit is false for "--name" and "-n"
// forms, which mean boolean true.
type Flag struct {
	Value    string
	Explicit bool
	// Raw is the token as typed, for error messages.
	Raw string
}

// Tokens is a line split against a schema.
type Tokens struct {
	Positional []string
	// Flags are keyed by argument name. Long flags naming no argument are
	// kept under their own name and ignored by the resolver.
	Flags map[string]Flag
}

// Lex splits raw on whitespace outside quoted spans. A quote (' " or `)
// opens a span at the start of a token, or right after the "=" of a
// "--name=" or "-x=" flag, and is closed by the same character; the closing
// quote also ends the token. Flag tokens keep their quotes in Text. An unterminated quote
// runs to the end of the input. Lex never fails.
func Lex(raw string) []Token {
	var (
		out []Token
		i   int
	)
	for i < len(raw) {
		r, size := utf8.DecodeRuneInString(raw[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		if isQuote(r) {
			start := i + size
			end := strings.IndexRune(raw[start:], r)
			if end < 0 {
				out = append(out, Token{Text: raw[start:], Quoted: true, End: len(raw)})
				break
			}
			i = start + end + size
			out = append(out, Token{Text: raw[start : start+end], Quoted: true, End: i})
			continue
		}
		start := i
		for i < len(raw) {
			r, size = utf8.DecodeRuneInString(raw[i:])
			if unicode.IsSpace(r) {
				break
			}
			if isQuote(r) && isFlagHead(raw[start:i]) {
				if end := strings.IndexRune(raw[i+size:], r); end < 0 {
					i = len(raw)
				} else {
					i += size + end + size
				}
				break
			}
			i += size
		}
		out = append(out, Token{Text: raw[start:i], End: i})
	}
	return out
}

func isQuote(r rune) bool {
	return r == '\'' || r == '"' || r == '`'
}

// isFlagHead reports whether s is "--name=" or "-x=".
func isFlagHead(s string) bool {
	body, ok := strings.CutSuffix(s, "=")
	if !ok || strings.Contains(body, "=") {
		return false
	}
	if name, ok := strings.CutPrefix(body, "--"); ok {
		return name != ""
	}
	name, ok := strings.CutPrefix(body, "-")
	return ok && utf8.RuneCountInString(name) == 1
}

// unquote strips the span quotes Lex left on a flag value. An unterminated
// span has no closing quote.
func unquote(value string) string {
	r, size := utf8.DecodeRuneInString(value)
	if size == 0 || !isQuote(r) {
		return value
	}
	value = value[size:]
	if v, ok := strings.CutSuffix(value, string(r)); ok {
		return v
	}
	return value
}

// Tokenize lexes raw and classifies the tokens against schema.
func Tokenize(raw string, schema []Argument) Tokens {
	return Classify(Lex(raw), schema)
}

// Classify separates flag tokens from positional ones. "--name[=value]" is
// always a long flag; "-x[=value]" is a short flag only when x is the short
// name of some argument in schema. Quoted tokens are always positional.
// Positional tokens keep their order.
func Classify(tokens []Token, schema []Argument) Tokens {
	out := Tokens{Flags: map[string]Flag{}}
	for _, t := range tokens {
		if t.Quoted {
			out.Positional = append(out.Positional, t.Text)
			continue
		}
		if name, flag, ok := parseFlag(t.Text, schema); ok {
			out.Flags[name] = flag
			continue
		}
		out.Positional = append(out.Positional, t.Text)
	}
	return out
}

func parseFlag(text string, schema []Argument) (string, Flag, bool) {
	if strings.HasPrefix(text, "--") {
		body := text[2:]
		name, value, explicit := strings.Cut(body, "=")
		return name, Flag{Value: unquote(value), Explicit: explicit, Raw: text}, true
	}
	if !strings.HasPrefix(text, "-") {
		return "", Flag{}, false
	}
	body := text[1:]
	short, size := utf8.DecodeRuneInString(body)
	if size == 0 || short == utf8.RuneError {
		return "", Flag{}, false
	}
	rest := body[size:]
	if rest != "" && !strings.HasPrefix(rest, "=") {
		return "", Flag{}, false
	}
	for _, a := range schema {
		if a.Short == string(short) {
			value, explicit := strings.CutPrefix(rest, "=")
			return a.Name, Flag{Value: unquote(value), Explicit: explicit, Raw: text}, true
		}
	}
	return "", Flag{}, false
}
