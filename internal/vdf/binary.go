package vdf

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Binary wire format: each map entry is a type tag, a NUL-terminated key,
// then the payload. Nested maps are closed by an end sentinel; the top-level
// map body runs to end of input (an optional trailing sentinel is accepted).
const (
	binTagMap    byte = 0x00
	binTagString byte = 0x01
	binTagInt    byte = 0x02
	binEnd       byte = 0x08
)

// DecodeBinary parses the binary encoding into a node tree. Malformed input,
// including unknown type tags and truncated streams, yields a *FormatError
// carrying the byte offset; a partial tree is never returned.
func DecodeBinary(data []byte) (*Node, error) {
	d := &binaryDecoder{data: data}
	root, err := d.decodeMap(true)
	if err != nil {
		return nil, err
	}
	if d.pos < len(d.data) {
		return nil, binaryErr(d.pos, "trailing data after top-level map")
	}
	return root, nil
}

type binaryDecoder struct {
	data []byte
	pos  int
}

func (d *binaryDecoder) decodeMap(top bool) (*Node, error) {
	node := NewMap()
	for {
		if d.pos >= len(d.data) {
			if top {
				return node, nil
			}
			return nil, binaryErr(d.pos, "unexpected end of input inside map")
		}

		tagPos := d.pos
		tag := d.data[d.pos]
		d.pos++

		if tag == binEnd {
			return node, nil
		}

		key, err := d.readString()
		if err != nil {
			return nil, err
		}

		var child *Node
		switch tag {
		case binTagMap:
			child, err = d.decodeMap(false)
			if err != nil {
				return nil, err
			}
		case binTagString:
			value, err := d.readString()
			if err != nil {
				return nil, err
			}
			child = String(value)
		case binTagInt:
			if d.pos+4 > len(d.data) {
				return nil, binaryErr(d.pos, "truncated int32 value for key %q", key)
			}
			child = Int(int32(binary.LittleEndian.Uint32(d.data[d.pos:])))
			d.pos += 4
		default:
			return nil, binaryErr(tagPos, "unknown type tag 0x%02x for key %q", tag, key)
		}

		node.Set(key, child)
	}
}

func (d *binaryDecoder) readString() (string, error) {
	end := bytes.IndexByte(d.data[d.pos:], 0x00)
	if end < 0 {
		return "", binaryErr(d.pos, "unterminated string")
	}
	s := string(d.data[d.pos : d.pos+end])
	d.pos += end + 1
	return s, nil
}

// EncodeBinary serializes a map node to the binary encoding. The top-level
// map body is emitted without a trailing sentinel, matching what the owning
// launcher writes.
func EncodeBinary(root *Node) ([]byte, error) {
	if !root.IsMap() {
		return nil, fmt.Errorf("encode binary: top-level node must be a map, got %s", root.Kind())
	}
	var buf bytes.Buffer
	if err := encodeBinaryBody(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeBinaryBody(buf *bytes.Buffer, node *Node) error {
	for _, key := range node.Keys() {
		child, _ := node.Get(key)
		switch child.Kind() {
		case KindMap:
			buf.WriteByte(binTagMap)
			writeNulString(buf, key)
			if err := encodeBinaryBody(buf, child); err != nil {
				return err
			}
			buf.WriteByte(binEnd)
		case KindString:
			buf.WriteByte(binTagString)
			writeNulString(buf, key)
			writeNulString(buf, child.StringValue())
		case KindInt:
			buf.WriteByte(binTagInt)
			writeNulString(buf, key)
			var raw [4]byte
			binary.LittleEndian.PutUint32(raw[:], uint32(child.IntValue()))
			buf.Write(raw[:])
		default:
			return fmt.Errorf("encode binary: unsupported node kind %s for key %q", child.Kind(), key)
		}
	}
	return nil
}

func writeNulString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0x00)
}
