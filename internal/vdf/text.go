package vdf

import (
	"fmt"
	"strings"
)

// DecodeText parses the brace-delimited text encoding into a node tree. All
// scalars decode as strings; the text variant is untyped. Mismatched braces,
// unterminated strings, and bare tokens yield a *FormatError carrying the
// line number.
func DecodeText(data []byte) (*Node, error) {
	s := &textScanner{data: string(data), line: 1}
	root, err := parseTextBody(s, true)
	if err != nil {
		return nil, err
	}
	return root, nil
}

func parseTextBody(s *textScanner, top bool) (*Node, error) {
	node := NewMap()
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokEOF:
			if !top {
				return nil, textErr(tok.line, "unexpected end of input inside map")
			}
			return node, nil
		case tokClose:
			if top {
				return nil, textErr(tok.line, "unmatched closing brace")
			}
			return node, nil
		case tokOpen:
			return nil, textErr(tok.line, "expected key, got '{'")
		}

		key := tok.value
		tok, err = s.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokString:
			node.Set(key, String(tok.value))
		case tokOpen:
			child, err := parseTextBody(s, false)
			if err != nil {
				return nil, err
			}
			node.Set(key, child)
		default:
			return nil, textErr(tok.line, "expected value or '{' after key %q", key)
		}
	}
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokOpen
	tokClose
)

type token struct {
	kind  tokenKind
	value string
	line  int
}

type textScanner struct {
	data string
	pos  int
	line int
}

func (s *textScanner) next() (token, error) {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case c == '\n':
			s.line++
			s.pos++
		case c == ' ' || c == '\t' || c == '\r':
			s.pos++
		case c == '/' && s.pos+1 < len(s.data) && s.data[s.pos+1] == '/':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' {
				s.pos++
			}
		case c == '{':
			s.pos++
			return token{kind: tokOpen, line: s.line}, nil
		case c == '}':
			s.pos++
			return token{kind: tokClose, line: s.line}, nil
		case c == '"':
			return s.scanString()
		default:
			return token{}, textErr(s.line, "unexpected character %q", c)
		}
	}
	return token{kind: tokEOF, line: s.line}, nil
}

func (s *textScanner) scanString() (token, error) {
	start := s.line
	s.pos++ // opening quote
	var b strings.Builder
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch c {
		case '"':
			s.pos++
			return token{kind: tokString, value: b.String(), line: start}, nil
		case '\\':
			if s.pos+1 >= len(s.data) {
				return token{}, textErr(start, "unterminated escape sequence")
			}
			s.pos++
			switch s.data[s.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			default:
				b.WriteByte(s.data[s.pos])
			}
			s.pos++
		case '\n':
			return token{}, textErr(start, "unterminated quoted string")
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	return token{}, textErr(start, "unterminated quoted string")
}

// EncodeText serializes a map node to the text encoding. Integer scalars are
// written as quoted decimal strings. Pretty mode indents nesting with tabs.
func EncodeText(root *Node, pretty bool) ([]byte, error) {
	if !root.IsMap() {
		return nil, fmt.Errorf("encode text: top-level node must be a map, got %s", root.Kind())
	}
	var b strings.Builder
	if err := encodeTextBody(&b, root, pretty, 0); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func encodeTextBody(b *strings.Builder, node *Node, pretty bool, level int) error {
	indent := ""
	if pretty {
		indent = strings.Repeat("\t", level)
	}
	for _, key := range node.Keys() {
		child, _ := node.Get(key)
		switch child.Kind() {
		case KindMap:
			fmt.Fprintf(b, "%s\"%s\"\n%s{\n", indent, escapeText(key), indent)
			if err := encodeTextBody(b, child, pretty, level+1); err != nil {
				return err
			}
			fmt.Fprintf(b, "%s}\n", indent)
		case KindString, KindInt:
			fmt.Fprintf(b, "%s\"%s\"\t\t\"%s\"\n", indent, escapeText(key), escapeText(child.StringValue()))
		default:
			return fmt.Errorf("encode text: unsupported node kind %s for key %q", child.Kind(), key)
		}
	}
	return nil
}

func escapeText(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
