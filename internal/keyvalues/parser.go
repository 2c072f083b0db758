package keyvalues

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
)

// Node is one key with either a scalar value or a block of children.
// Entity lumps contain anonymous top-level blocks (empty Key).
type Node struct {
	Key      string
	Value    string
	Children []*Node
	Block    bool
	Line     int
}

// Child returns the last child whose key matches case-insensitively.
func (n *Node) Child(key string) *Node {
	for i := len(n.Children) - 1; i >= 0; i-- {
		if strings.EqualFold(n.Children[i].Key, key) {
			return n.Children[i]
		}
	}
	return nil
}

// Lookup returns the scalar value of the last matching child.
func (n *Node) Lookup(key string) (string, bool) {
	c := n.Child(key)
	if c == nil || c.Block {
		return "", false
	}
	return c.Value, true
}

type token struct {
	typ   int
	text  string
	line  int
	col int
}

func tokenize(data []byte) ([]token, error) {
	scanner, err := lexer.Scanner(data)
	if err != nil {
		return nil, errors.Wrap(err, "keyvalues: create scanner")
	}

	tokens := make([]token, 0, 64)
	for tok, err, eos := scanner.Next(); !eos; tok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrap(err, "keyvalues: tokenize")
		}
		t := tok.(*lexmachine.Token)
		if t.Type == tokenComment {
			continue
		}
		text := t.Value.(string)
		if t.Type == tokenString {
			text = text[1 : len(text)-1]
		}
		tokens = append(tokens, token{typ: t.Type, text: text, line: t.StartLine, col: t.StartColumn})
	}
	return tokens, nil
}

// Parse reads a document into its top-level nodes. Entries guarded by a
// platform condition that does not hold on desktop builds are dropped.
func Parse(data []byte) ([]*Node, error) {
	tokens, err := tokenize(data)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	nodes, err := p.list(false)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

// condition consumes an optional trailing condition and reports whether it holds.
func (p *parser) condition() bool {
	t, ok := p.peek()
	if !ok || t.typ != tokenCondition {
		return true
	}
	p.pos++
	return evalCondition(t.text)
}

func (p *parser) list(nested bool) ([]*Node, error) {
	var nodes []*Node
	for {
		t, ok := p.next()
		if !ok {
			if nested {
				return nil, errors.New("keyvalues: unexpected end of input, missing '}'")
			}
			return nodes, nil
		}

		switch t.typ {
		case tokenClose:
			if !nested {
				return nil, errors.Errorf("keyvalues: unexpected '}' at %d:%d", t.line, t.col)
			}
			return nodes, nil
		case tokenOpen:
			children, err := p.list(true)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &Node{Children: children, Block: true, Line: t.line})
		case tokenCondition:
			// stray condition without a key
		case tokenString, tokenWord:
			node, keep, err := p.entry(t)
			if err != nil {
				return nil, err
			}
			if keep {
				nodes = append(nodes, node)
			}
		}
	}
}

func (p *parser) entry(key token) (*Node, bool, error) {
	keep := p.condition()

	t, ok := p.next()
	if !ok {
		return nil, false, errors.Errorf("keyvalues: key %q at %d:%d has no value", key.text, key.line, key.col)
	}

	node := &Node{Key: key.text, Line: key.line}
	switch t.typ {
	case tokenOpen:
		children, err := p.list(true)
		if err != nil {
			return nil, false, errors.Wrapf(err, "in block %q", key.text)
		}
		node.Children = children
		node.Block = true
	case tokenString, tokenWord:
		node.Value = t.text
	default:
		return nil, false, errors.Errorf("keyvalues: unexpected %q after key %q at %d:%d", t.text, key.text, t.line, t.col)
	}

	if !p.condition() {
		keep = false
	}
	return node, keep, nil
}
