package script

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wangxinyu2018/scriptanalyzer/opcode"
)

// ParseError reports a malformed bytecode stream.
type ParseError struct {
	// Kind distinguishes the three ways raw bytecode can fail to parse.
	Kind     ParseErrorKind
	Opcode   opcode.Opcode
	Byte     byte
	Expected int
	Actual   int
}

// ParseErrorKind enumerates the shapes of ParseError.
type ParseErrorKind int

const (
	// ParseErrorInvalid means the leading byte isn't a known opcode and
	// exceeds the maximum implicit push length (75).
	ParseErrorInvalid ParseErrorKind = iota
	// ParseErrorUnexpectedEndPushdataLength means an OP_PUSHDATA1/2/4's
	// length prefix ran past the end of the script.
	ParseErrorUnexpectedEndPushdataLength
	// ParseErrorUnexpectedEnd means a push's declared length ran past the
	// end of the script.
	ParseErrorUnexpectedEnd
)

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseErrorInvalid:
		return fmt.Sprintf("invalid opcode 0x%02x", e.Byte)
	case ParseErrorUnexpectedEndPushdataLength:
		return fmt.Sprintf("%s with incomplete push length (SCRIPT_ERR_BAD_OPCODE)", e.Opcode)
	default:
		return fmt.Sprintf("invalid length, expected %d but got %d (SCRIPT_ERR_BAD_OPCODE)", e.Expected, e.Actual)
	}
}

// Parse decodes raw bytecode into a Script.
func Parse(bytecode []byte) (Script, error) {
	var out Script

	offset := 0
	for offset < len(bytecode) {
		b := bytecode[offset]
		offset++
		op := opcode.Opcode(b)

		if op.Name() != "" {
			if n, ok := op.PushdataLength(); ok {
				if offset+n > len(bytecode) {
					return nil, &ParseError{Kind: ParseErrorUnexpectedEndPushdataLength, Opcode: op}
				}
				lenBytes := bytecode[offset : offset+n]
				offset += n

				var buf [4]byte
				copy(buf[:], lenBytes)
				l := int(binary.LittleEndian.Uint32(buf[:]))

				if offset+l > len(bytecode) {
					return nil, &ParseError{Kind: ParseErrorUnexpectedEnd, Expected: l, Actual: len(bytecode) - offset}
				}
				data := bytecode[offset : offset+l]
				offset += l
				out = append(out, NewBytesElem(data))
			} else {
				out = append(out, NewOpElem(op))
			}
		} else if b <= 75 {
			if offset+int(b) > len(bytecode) {
				return nil, &ParseError{Kind: ParseErrorUnexpectedEnd, Expected: int(b), Actual: len(bytecode) - offset}
			}
			data := bytecode[offset : offset+int(b)]
			offset += int(b)
			out = append(out, NewBytesElem(data))
		} else {
			return nil, &ParseError{Kind: ParseErrorInvalid, Byte: b}
		}
	}

	return out, nil
}

// ASMError reports a malformed ASM text script.
type ASMError struct {
	Kind  ASMErrorKind
	Inner error
}

// ASMErrorKind enumerates the ways ASM text can fail to parse.
type ASMErrorKind int

const (
	ASMErrorIntegerOutOfRange ASMErrorKind = iota
	ASMErrorDataPushTooLarge
	ASMErrorUnknownOpcode
	ASMErrorExplicitPushdata
	ASMErrorHexDecode
)

func (e *ASMError) Error() string {
	switch e.Kind {
	case ASMErrorIntegerOutOfRange:
		return "integer out of range"
	case ASMErrorDataPushTooLarge:
		return "data push too large"
	case ASMErrorUnknownOpcode:
		return "unknown opcode"
	case ASMErrorExplicitPushdata:
		return "OP_PUSHDATA opcodes are not allowed in asm script"
	default:
		return fmt.Sprintf("hex decode error: %v", e.Inner)
	}
}

func (e *ASMError) Unwrap() error { return e.Inner }

// ParseASM tokenizes whitespace-separated ASM text (decimal integers,
// <hex> data pushes, and opcode names) into the same bytecode shape Parse
// produces, then parses that bytecode. It mirrors Bitcoin Core's asm
// grammar: a bare "0" is OP_0, -1..16 collapse to OP_1NEGATE/OP_1../OP_16,
// any other in-range integer becomes a minimal-length data push, and
// OP_PUSHDATAn opcodes may not appear explicitly (use <hex> instead).
func ParseASM(asm string) (Script, error) {
	var raw []byte

	fields := strings.FieldsFunc(asm, unicode.IsSpace)
	for _, tok := range fields {
		if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
			switch {
			case n == 0:
				raw = append(raw, 0x00)
			case n >= -1 && n <= 16:
				raw = append(raw, byte(0x50+n))
			case n >= -0x7fffffff && n <= 0x7fffffff:
				enc := EncodeInt(n)
				raw = append(raw, byte(len(enc)))
				raw = append(raw, enc...)
			default:
				return nil, &ASMError{Kind: ASMErrorIntegerOutOfRange}
			}
			continue
		}

		if len(tok) >= 2 && tok[0] == '<' && tok[len(tok)-1] == '>' {
			hexPart := tok[1 : len(tok)-1]
			data, err := hex.DecodeString(hexPart)
			if err != nil {
				return nil, &ASMError{Kind: ASMErrorHexDecode, Inner: err}
			}
			switch {
			case len(data) <= 75:
				raw = append(raw, byte(len(data)))
			case len(data) <= 255:
				raw = append(raw, byte(opcode.OP_PUSHDATA1), byte(len(data)))
			case len(data) <= 520:
				raw = append(raw, byte(opcode.OP_PUSHDATA2), byte(len(data)), byte(len(data)>>8))
			default:
				return nil, &ASMError{Kind: ASMErrorDataPushTooLarge}
			}
			raw = append(raw, data...)
			continue
		}

		op, ok := opcode.FromName(tok)
		if !ok {
			return nil, &ASMError{Kind: ASMErrorUnknownOpcode}
		}
		if _, isPushdata := op.PushdataLength(); isPushdata {
			return nil, &ASMError{Kind: ASMErrorExplicitPushdata}
		}
		raw = append(raw, byte(op))
	}

	s, err := Parse(raw)
	if err != nil {
		// Parse only fails here on an internal inconsistency between this
		// tokenizer and Parse's opcode table, never on user input.
		panic(err)
	}
	return s, nil
}
