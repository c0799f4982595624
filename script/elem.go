package script

import (
	"fmt"
	"strings"

	"github.com/wangxinyu2018/scriptanalyzer/opcode"
)

// Elem is one decoded element of a script: either an opcode or the literal
// bytes of a data push.
type Elem struct {
	Op    opcode.Opcode
	Bytes []byte
	isOp  bool
}

// NewOpElem builds an Elem holding an opcode.
func NewOpElem(op opcode.Opcode) Elem {
	return Elem{Op: op, isOp: true}
}

// NewBytesElem builds an Elem holding a data push.
func NewBytesElem(b []byte) Elem {
	return Elem{Bytes: b}
}

// IsOp reports whether e holds an opcode rather than a data push.
func (e Elem) IsOp() bool { return e.isOp }

func (e Elem) String() string {
	if e.isOp {
		return e.Op.String()
	}
	var sb strings.Builder
	sb.WriteByte('<')
	for _, b := range e.Bytes {
		fmt.Fprintf(&sb, "%02x", b)
	}
	sb.WriteByte('>')
	return sb.String()
}

// Script is a parsed sequence of opcodes and data pushes.
type Script []Elem

// ToBytes re-serializes a Script back to its minimal bytecode encoding: a
// raw push opcode for pushes of 75 bytes or fewer and the shortest
// OP_PUSHDATAn prefix otherwise.
func (s Script) ToBytes() []byte {
	var out []byte
	for _, e := range s {
		if e.IsOp() {
			out = append(out, byte(e.Op))
			continue
		}
		out = append(out, encodePushPrefix(len(e.Bytes))...)
		out = append(out, e.Bytes...)
	}
	return out
}

func encodePushPrefix(n int) []byte {
	switch {
	case n <= 75:
		return []byte{byte(n)}
	case n <= 0xff:
		return []byte{byte(opcode.OP_PUSHDATA1), byte(n)}
	case n <= 0xffff:
		return []byte{byte(opcode.OP_PUSHDATA2), byte(n), byte(n >> 8)}
	default:
		return []byte{
			byte(opcode.OP_PUSHDATA4),
			byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24),
		}
	}
}

func (s Script) String() string {
	var sb strings.Builder
	indent := 0
	for i, e := range s {
		if i > 0 {
			if e.IsOp() && (e.Op == opcode.OP_ELSE || e.Op == opcode.OP_ENDIF) {
				if indent > 0 {
					indent--
				}
			}
			sb.WriteByte('\n')
			for j := 0; j < indent; j++ {
				sb.WriteString("  ")
			}
		}
		sb.WriteString(e.String())
		if e.IsOp() && (e.Op == opcode.OP_IF || e.Op == opcode.OP_NOTIF || e.Op == opcode.OP_ELSE) {
			indent++
		}
	}
	return sb.String()
}

// SpaceSeparated renders s as one space-separated line, the ASM format
// ParseASM accepts back.
func (s Script) SpaceSeparated() string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}
