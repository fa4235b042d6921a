package diagram

import (
	"fmt"
	"os"
)

// parser turns a token stream into a Node tree plus a flat relationship
// list. It is a tagged-variant dispatch over token kinds, with an explicit
// fallback branch for unknown labels, not a label→handler map.
type parser struct {
	lex     *lexer
	cur     token
	counter int
	rels    []Relationship
}

func newParser(src string) (*parser, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) nextID() int {
	id := p.counter
	p.counter++
	return id
}

// Parse reads a diagram file from disk.
func Parse(path string) (*Node, []Relationship, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("diagram: read %q: %w", path, err)
	}
	return ParseSource(string(data))
}

// ParseSource parses diagram text already in memory.
func ParseSource(src string) (*Node, []Relationship, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, nil, err
	}
	root := &Node{ID: p.nextID(), Kind: KindOther, Name: "root"}
	if err := p.parseBlock(root); err != nil {
		return nil, nil, err
	}
	return root, p.rels, nil
}

// parseBlock consumes statements until a closing brace or EOF, attaching
// constructed nodes to parent and appending relationships to p.rels.
func (p *parser) parseBlock(parent *Node) error {
	for {
		switch p.cur.kind {
		case tokEOF, tokRBrace:
			return nil
		case tokKeywordTitle:
			p.lex.skipToEOL()
			if err := p.advance(); err != nil {
				return err
			}
		case tokKeywordPackage:
			if err := p.parseNode(parent, KindPackage); err != nil {
				return err
			}
		case tokKeywordComponent:
			if err := p.parseNode(parent, KindComponent); err != nil {
				return err
			}
		case tokIdent:
			if err := p.parseRelationship(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: line %d token %q", ErrGrammarUnknown, p.cur.line, p.cur.text)
		}
	}
}

func (p *parser) parseNode(parent *Node, kind Kind) error {
	line := p.cur.line
	if err := p.advance(); err != nil { // consume "package"/"component"
		return err
	}
	if p.cur.kind != tokString {
		return fmt.Errorf("%w: expected quoted name after %s at line %d", ErrGrammarUnknown, kind, line)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return err
	}

	var variable, stereotype string
	if p.cur.kind == tokAs {
		if err := p.advance(); err != nil {
			return err
		}
		if p.cur.kind != tokIdent {
			return fmt.Errorf("%w: expected identifier after 'as' at line %d", ErrGrammarUnknown, line)
		}
		variable = p.cur.text
		if err := p.advance(); err != nil {
			return err
		}
	}
	if p.cur.kind == tokStereotype {
		stereotype = p.cur.text
		if err := p.advance(); err != nil {
			return err
		}
	}

	node := &Node{ID: p.nextID(), Kind: kind, Name: name, Variable: variable, Stereotype: stereotype}

	if p.cur.kind == tokLBrace {
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.parseBlock(node); err != nil {
			return err
		}
		if p.cur.kind != tokRBrace {
			return fmt.Errorf("%w: expected '}' to close %s %q", ErrGrammarUnknown, kind, name)
		}
		if err := p.advance(); err != nil {
			return err
		}
	}

	// Children of a recognized node become children of the constructed
	// node; the node itself is always attached to its parent even without
	// a variable so the Binder can still walk past it to reach bound
	// descendants.
	parent.Children = append(parent.Children, node)
	return nil
}

// isUsesArrow reports whether text is a plain association arrow (no '.' or
// '|'): the left operand is the dependency's source. Any other arrow (dotted
// dependency, piped generalization) reverses src/dst. The side an arrowhead
// ('<' or '>') sits on is not considered.
func isUsesArrow(text string) bool {
	for _, r := range text {
		if r == '.' || r == '|' {
			return false
		}
	}
	return true
}

func (p *parser) parseRelationship() error {
	line := p.cur.line
	left := p.cur.text
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.kind != tokArrow {
		return fmt.Errorf("%w: expected arrow after %q at line %d", ErrGrammarUnknown, left, line)
	}
	arrow := p.cur.text
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.kind != tokIdent {
		return fmt.Errorf("%w: expected identifier after arrow at line %d", ErrGrammarUnknown, line)
	}
	right := p.cur.text
	if err := p.advance(); err != nil {
		return err
	}

	rel := Relationship{Src: left, Dst: right}
	if !isUsesArrow(arrow) {
		rel = Relationship{Src: right, Dst: left}
	}
	p.rels = append(p.rels, rel)
	return nil
}
