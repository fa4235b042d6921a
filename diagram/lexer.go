package diagram

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokString
	tokArrow
	tokAs
	tokKeywordPackage
	tokKeywordComponent
	tokKeywordTitle
	tokStereotype
	tokIdent
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lexer tokenizes a practical subset of PlantUML component-diagram syntax:
// packages, components, "as" aliases, <<stereotypes>>, brace nesting,
// relationship arrows, and directive/comment/title lines that are skipped
// transparently.
type lexer struct {
	src  []rune
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1}
}

const arrowChars = "-.<>|"

func (l *lexer) peekRune() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lexer) skipToEOL() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

func (l *lexer) next() (token, error) {
	for {
		r, ok := l.peekRune()
		if !ok {
			return token{kind: tokEOF, line: l.line}, nil
		}
		switch {
		case r == '\n':
			l.line++
			l.pos++
			continue
		case r == ' ' || r == '\t' || r == '\r':
			l.pos++
			continue
		case r == '\'':
			l.skipToEOL()
			continue
		case r == '@':
			l.skipToEOL()
			continue
		}
		break
	}

	r, _ := l.peekRune()
	switch {
	case r == '{':
		l.pos++
		return token{kind: tokLBrace, text: "{", line: l.line}, nil
	case r == '}':
		l.pos++
		return token{kind: tokRBrace, text: "}", line: l.line}, nil
	case r == '"':
		return l.lexString()
	case r == '<' && l.lookaheadIs("<<"):
		return l.lexStereotype()
	case strings.ContainsRune(arrowChars, r):
		return l.lexArrow()
	case isIdentStart(r):
		return l.lexIdent()
	default:
		return token{}, fmt.Errorf("diagram: unexpected character %q at line %d", r, l.line)
	}
}

func (l *lexer) lookaheadIs(s string) bool {
	runes := []rune(s)
	if l.pos+len(runes) > len(l.src) {
		return false
	}
	for i, r := range runes {
		if l.src[l.pos+i] != r {
			return false
		}
	}
	return true
}

func (l *lexer) lexString() (token, error) {
	start := l.line
	l.pos++ // consume opening quote
	var b strings.Builder
	for {
		r, ok := l.peekRune()
		if !ok {
			return token{}, fmt.Errorf("diagram: unterminated string starting at line %d", start)
		}
		if r == '"' {
			l.pos++
			break
		}
		if r == '\n' {
			l.line++
		}
		b.WriteRune(r)
		l.pos++
	}
	return token{kind: tokString, text: b.String(), line: start}, nil
}

func (l *lexer) lexStereotype() (token, error) {
	start := l.line
	l.pos += 2 // consume "<<"
	var b strings.Builder
	for {
		r, ok := l.peekRune()
		if !ok {
			return token{}, fmt.Errorf("diagram: unterminated stereotype starting at line %d", start)
		}
		if r == '>' && l.lookaheadIs(">>") {
			l.pos += 2
			break
		}
		b.WriteRune(r)
		l.pos++
	}
	return token{kind: tokStereotype, text: strings.TrimSpace(b.String()), line: start}, nil
}

func (l *lexer) lexArrow() (token, error) {
	start := l.line
	var b strings.Builder
	for {
		r, ok := l.peekRune()
		if !ok || !strings.ContainsRune(arrowChars, r) {
			break
		}
		b.WriteRune(r)
		l.pos++
	}
	return token{kind: tokArrow, text: b.String(), line: start}, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func (l *lexer) lexIdent() (token, error) {
	start := l.line
	var b strings.Builder
	for {
		r, ok := l.peekRune()
		if !ok || !(isIdentStart(r) || r == '.' || r == ':') {
			break
		}
		b.WriteRune(r)
		l.pos++
	}
	text := b.String()
	switch strings.ToLower(text) {
	case "package":
		return token{kind: tokKeywordPackage, text: text, line: start}, nil
	case "component":
		return token{kind: tokKeywordComponent, text: text, line: start}, nil
	case "title":
		return token{kind: tokKeywordTitle, text: text, line: start}, nil
	case "as":
		return token{kind: tokAs, text: text, line: start}, nil
	default:
		return token{kind: tokIdent, text: text, line: start}, nil
	}
}
