// Package opcode is the single source of truth for Bitcoin Script opcode
// bytes: their names, categories, and the static properties the expression
// algebra and interpreter need (disabled, boolean/number return,
// reorderability).
package opcode

import (
	"fmt"

	set "gopkg.in/fatih/set.v0"
)

// Opcode identifies a single Bitcoin Script instruction byte.
type Opcode byte

// Opcode byte values, mirroring Bitcoin Core's src/script/script.h.
const (
	OP_0     Opcode = 0x00
	OP_FALSE Opcode = OP_0

	OP_PUSHDATA1 Opcode = 0x4c
	OP_PUSHDATA2 Opcode = 0x4d
	OP_PUSHDATA4 Opcode = 0x4e
	OP_1NEGATE   Opcode = 0x4f
	OP_RESERVED  Opcode = 0x50
	OP_1         Opcode = 0x51
	OP_TRUE      Opcode = OP_1
	OP_2         Opcode = 0x52
	OP_3         Opcode = 0x53
	OP_4         Opcode = 0x54
	OP_5         Opcode = 0x55
	OP_6         Opcode = 0x56
	OP_7         Opcode = 0x57
	OP_8         Opcode = 0x58
	OP_9         Opcode = 0x59
	OP_10        Opcode = 0x5a
	OP_11        Opcode = 0x5b
	OP_12        Opcode = 0x5c
	OP_13        Opcode = 0x5d
	OP_14        Opcode = 0x5e
	OP_15        Opcode = 0x5f
	OP_16        Opcode = 0x60

	OP_NOP      Opcode = 0x61
	OP_VER      Opcode = 0x62
	OP_IF       Opcode = 0x63
	OP_NOTIF    Opcode = 0x64
	OP_VERIF    Opcode = 0x65
	OP_VERNOTIF Opcode = 0x66
	OP_ELSE     Opcode = 0x67
	OP_ENDIF    Opcode = 0x68
	OP_VERIFY   Opcode = 0x69
	OP_RETURN   Opcode = 0x6a

	OP_TOALTSTACK   Opcode = 0x6b
	OP_FROMALTSTACK Opcode = 0x6c
	OP_2DROP        Opcode = 0x6d
	OP_2DUP         Opcode = 0x6e
	OP_3DUP         Opcode = 0x6f
	OP_2OVER        Opcode = 0x70
	OP_2ROT         Opcode = 0x71
	OP_2SWAP        Opcode = 0x72
	OP_IFDUP        Opcode = 0x73
	OP_DEPTH        Opcode = 0x74
	OP_DROP         Opcode = 0x75
	OP_DUP          Opcode = 0x76
	OP_NIP          Opcode = 0x77
	OP_OVER         Opcode = 0x78
	OP_PICK         Opcode = 0x79
	OP_ROLL         Opcode = 0x7a
	OP_ROT          Opcode = 0x7b
	OP_SWAP         Opcode = 0x7c
	OP_TUCK         Opcode = 0x7d

	OP_CAT    Opcode = 0x7e
	OP_SUBSTR Opcode = 0x7f
	OP_LEFT   Opcode = 0x80
	OP_RIGHT  Opcode = 0x81
	OP_SIZE   Opcode = 0x82

	OP_INVERT     Opcode = 0x83
	OP_AND        Opcode = 0x84
	OP_OR         Opcode = 0x85
	OP_XOR        Opcode = 0x86
	OP_EQUAL      Opcode = 0x87
	OP_EQUALVERIFY Opcode = 0x88
	OP_RESERVED1  Opcode = 0x89
	OP_RESERVED2  Opcode = 0x8a

	OP_1ADD      Opcode = 0x8b
	OP_1SUB      Opcode = 0x8c
	OP_2MUL      Opcode = 0x8d
	OP_2DIV      Opcode = 0x8e
	OP_NEGATE    Opcode = 0x8f
	OP_ABS       Opcode = 0x90
	OP_NOT       Opcode = 0x91
	OP_0NOTEQUAL Opcode = 0x92

	OP_ADD    Opcode = 0x93
	OP_SUB    Opcode = 0x94
	OP_MUL    Opcode = 0x95
	OP_DIV    Opcode = 0x96
	OP_MOD    Opcode = 0x97
	OP_LSHIFT Opcode = 0x98
	OP_RSHIFT Opcode = 0x99

	OP_BOOLAND            Opcode = 0x9a
	OP_BOOLOR             Opcode = 0x9b
	OP_NUMEQUAL           Opcode = 0x9c
	OP_NUMEQUALVERIFY     Opcode = 0x9d
	OP_NUMNOTEQUAL        Opcode = 0x9e
	OP_LESSTHAN           Opcode = 0x9f
	OP_GREATERTHAN        Opcode = 0xa0
	OP_LESSTHANOREQUAL    Opcode = 0xa1
	OP_GREATERTHANOREQUAL Opcode = 0xa2
	OP_MIN                Opcode = 0xa3
	OP_MAX                Opcode = 0xa4

	OP_WITHIN Opcode = 0xa5

	OP_RIPEMD160           Opcode = 0xa6
	OP_SHA1                Opcode = 0xa7
	OP_SHA256              Opcode = 0xa8
	OP_HASH160             Opcode = 0xa9
	OP_HASH256             Opcode = 0xaa
	OP_CODESEPARATOR       Opcode = 0xab
	OP_CHECKSIG            Opcode = 0xac
	OP_CHECKSIGVERIFY      Opcode = 0xad
	OP_CHECKMULTISIG       Opcode = 0xae
	OP_CHECKMULTISIGVERIFY Opcode = 0xaf

	OP_NOP1                Opcode = 0xb0
	OP_CHECKLOCKTIMEVERIFY Opcode = 0xb1
	OP_NOP2                Opcode = 0xb1
	OP_CHECKSEQUENCEVERIFY Opcode = 0xb2
	OP_NOP3                Opcode = 0xb2
	OP_NOP4                Opcode = 0xb3
	OP_NOP5                Opcode = 0xb4
	OP_NOP6                Opcode = 0xb5
	OP_NOP7                Opcode = 0xb6
	OP_NOP8                Opcode = 0xb7
	OP_NOP9                Opcode = 0xb8
	OP_NOP10               Opcode = 0xb9

	// OP_CHECKSIGADD was added by BIP 342 (Tapscript).
	OP_CHECKSIGADD Opcode = 0xba

	OP_INVALIDOPCODE Opcode = 0xff

	OP_CLTV = OP_CHECKLOCKTIMEVERIFY
	OP_CSV  = OP_CHECKSEQUENCEVERIFY

	// OP_INTERNAL_NOT is a pseudo-opcode never present in real scripts. It
	// denotes boolean negation without OP_NOT's 4-byte numeric-size
	// constraint, and is synthesized by the interpreter for NOTIF branch
	// conditions and IFDUP forks.
	OP_INTERNAL_NOT Opcode = 0xfe
)

var names = map[Opcode]string{
	OP_0: "OP_0", OP_PUSHDATA1: "OP_PUSHDATA1", OP_PUSHDATA2: "OP_PUSHDATA2",
	OP_PUSHDATA4: "OP_PUSHDATA4", OP_1NEGATE: "OP_1NEGATE", OP_RESERVED: "OP_RESERVED",
	OP_1: "OP_1", OP_2: "OP_2", OP_3: "OP_3", OP_4: "OP_4", OP_5: "OP_5", OP_6: "OP_6",
	OP_7: "OP_7", OP_8: "OP_8", OP_9: "OP_9", OP_10: "OP_10", OP_11: "OP_11", OP_12: "OP_12",
	OP_13: "OP_13", OP_14: "OP_14", OP_15: "OP_15", OP_16: "OP_16",
	OP_NOP: "OP_NOP", OP_VER: "OP_VER", OP_IF: "OP_IF", OP_NOTIF: "OP_NOTIF",
	OP_VERIF: "OP_VERIF", OP_VERNOTIF: "OP_VERNOTIF", OP_ELSE: "OP_ELSE", OP_ENDIF: "OP_ENDIF",
	OP_VERIFY: "OP_VERIFY", OP_RETURN: "OP_RETURN",
	OP_TOALTSTACK: "OP_TOALTSTACK", OP_FROMALTSTACK: "OP_FROMALTSTACK", OP_2DROP: "OP_2DROP",
	OP_2DUP: "OP_2DUP", OP_3DUP: "OP_3DUP", OP_2OVER: "OP_2OVER", OP_2ROT: "OP_2ROT",
	OP_2SWAP: "OP_2SWAP", OP_IFDUP: "OP_IFDUP", OP_DEPTH: "OP_DEPTH", OP_DROP: "OP_DROP",
	OP_DUP: "OP_DUP", OP_NIP: "OP_NIP", OP_OVER: "OP_OVER", OP_PICK: "OP_PICK",
	OP_ROLL: "OP_ROLL", OP_ROT: "OP_ROT", OP_SWAP: "OP_SWAP", OP_TUCK: "OP_TUCK",
	OP_CAT: "OP_CAT", OP_SUBSTR: "OP_SUBSTR", OP_LEFT: "OP_LEFT", OP_RIGHT: "OP_RIGHT",
	OP_SIZE: "OP_SIZE",
	OP_INVERT: "OP_INVERT", OP_AND: "OP_AND", OP_OR: "OP_OR", OP_XOR: "OP_XOR",
	OP_EQUAL: "OP_EQUAL", OP_EQUALVERIFY: "OP_EQUALVERIFY",
	OP_RESERVED1: "OP_RESERVED1", OP_RESERVED2: "OP_RESERVED2",
	OP_1ADD: "OP_1ADD", OP_1SUB: "OP_1SUB", OP_2MUL: "OP_2MUL", OP_2DIV: "OP_2DIV",
	OP_NEGATE: "OP_NEGATE", OP_ABS: "OP_ABS", OP_NOT: "OP_NOT", OP_0NOTEQUAL: "OP_0NOTEQUAL",
	OP_ADD: "OP_ADD", OP_SUB: "OP_SUB", OP_MUL: "OP_MUL", OP_DIV: "OP_DIV", OP_MOD: "OP_MOD",
	OP_LSHIFT: "OP_LSHIFT", OP_RSHIFT: "OP_RSHIFT",
	OP_BOOLAND: "OP_BOOLAND", OP_BOOLOR: "OP_BOOLOR", OP_NUMEQUAL: "OP_NUMEQUAL",
	OP_NUMEQUALVERIFY: "OP_NUMEQUALVERIFY", OP_NUMNOTEQUAL: "OP_NUMNOTEQUAL",
	OP_LESSTHAN: "OP_LESSTHAN", OP_GREATERTHAN: "OP_GREATERTHAN",
	OP_LESSTHANOREQUAL: "OP_LESSTHANOREQUAL", OP_GREATERTHANOREQUAL: "OP_GREATERTHANOREQUAL",
	OP_MIN: "OP_MIN", OP_MAX: "OP_MAX", OP_WITHIN: "OP_WITHIN",
	OP_RIPEMD160: "OP_RIPEMD160", OP_SHA1: "OP_SHA1", OP_SHA256: "OP_SHA256",
	OP_HASH160: "OP_HASH160", OP_HASH256: "OP_HASH256", OP_CODESEPARATOR: "OP_CODESEPARATOR",
	OP_CHECKSIG: "OP_CHECKSIG", OP_CHECKSIGVERIFY: "OP_CHECKSIGVERIFY",
	OP_CHECKMULTISIG: "OP_CHECKMULTISIG", OP_CHECKMULTISIGVERIFY: "OP_CHECKMULTISIGVERIFY",
	OP_NOP1: "OP_NOP1", OP_CHECKLOCKTIMEVERIFY: "OP_CHECKLOCKTIMEVERIFY",
	OP_CHECKSEQUENCEVERIFY: "OP_CHECKSEQUENCEVERIFY",
	OP_NOP4: "OP_NOP4", OP_NOP5: "OP_NOP5", OP_NOP6: "OP_NOP6", OP_NOP7: "OP_NOP7",
	OP_NOP8: "OP_NOP8", OP_NOP9: "OP_NOP9", OP_NOP10: "OP_NOP10",
	OP_CHECKSIGADD: "OP_CHECKSIGADD", OP_INVALIDOPCODE: "OP_INVALIDOPCODE",
}

// disabledOpcodes were disabled in Bitcoin Core because of CVE-2010-5137.
var disabledOpcodes = set.New(
	OP_CAT, OP_SUBSTR, OP_LEFT, OP_RIGHT, OP_INVERT,
	OP_AND, OP_OR, OP_XOR, OP_2MUL, OP_2DIV,
	OP_MUL, OP_DIV, OP_MOD, OP_LSHIFT, OP_RSHIFT,
)

// returnsBooleanOpcodes returns <> (false) or <01> (true).
var returnsBooleanOpcodes = set.New(
	OP_EQUAL, OP_NOT, OP_0NOTEQUAL, OP_BOOLAND, OP_BOOLOR,
	OP_NUMEQUAL, OP_NUMNOTEQUAL, OP_LESSTHAN, OP_GREATERTHAN,
	OP_LESSTHANOREQUAL, OP_GREATERTHANOREQUAL, OP_WITHIN,
	OP_CHECKSIG, OP_CHECKMULTISIG, OP_INTERNAL_NOT,
)

// returnsNumberExtra are the non-boolean opcodes that additionally return a
// bounded (max 5-byte) number.
var returnsNumberExtra = set.New(
	OP_SIZE, OP_NEGATE, OP_ABS, OP_ADD, OP_SUB, OP_MIN, OP_MAX,
)

// nonCommutative opcodes may not have their arguments reordered by the
// simplifier's total-order sort.
var nonCommutative = set.New(
	OP_SUB, OP_LESSTHAN, OP_GREATERTHAN, OP_LESSTHANOREQUAL, OP_GREATERTHANOREQUAL,
	OP_WITHIN, OP_CHECKSIG, OP_CHECKMULTISIG,
)

// Name returns the opcode's canonical textual name, or "" for unknown or
// internal opcodes.
func (op Opcode) Name() string {
	if op == OP_INTERNAL_NOT {
		return ""
	}
	return names[op]
}

// String implements fmt.Stringer, returning "UNKNOWN" for unnamed opcodes.
func (op Opcode) String() string {
	if n := op.Name(); n != "" {
		return n
	}
	return "UNKNOWN"
}

// IsDisabled reports whether op was permanently disabled by Bitcoin Core.
func (op Opcode) IsDisabled() bool {
	return disabledOpcodes.Has(op)
}

// PushdataLength returns the little-endian length-prefix size (1, 2, or 4)
// for OP_PUSHDATA1/2/4, and ok=false for every other opcode.
func (op Opcode) PushdataLength() (n int, ok bool) {
	switch op {
	case OP_PUSHDATA1:
		return 1, true
	case OP_PUSHDATA2:
		return 2, true
	case OP_PUSHDATA4:
		return 4, true
	default:
		return 0, false
	}
}

// ReturnsBoolean reports whether op's result is always <> or <01>.
func (op Opcode) ReturnsBoolean() bool {
	return returnsBooleanOpcodes.Has(op)
}

// ReturnsNumber reports whether op's result is always a script number of at
// most 5 bytes (every boolean-returning opcode also satisfies this).
func (op Opcode) ReturnsNumber() bool {
	return op.ReturnsBoolean() || returnsNumberExtra.Has(op)
}

// CanReorderArgs reports whether the simplifier's total-order sort may
// permute op's arguments (i.e. op is commutative).
func (op Opcode) CanReorderArgs() bool {
	return !nonCommutative.Has(op)
}

// IsConditional reports whether op is one of the IF/NOTIF/ELSE/ENDIF family
// that must be evaluated even on the inactive side of a conditional branch.
func (op Opcode) IsConditional() bool {
	return op == OP_IF || op == OP_NOTIF || op == OP_ELSE || op == OP_ENDIF
}

// Category classifies an opcode the way Bitcoin Core's script.h groups its
// ranges, used purely for disassembly annotation.
type Category int

const (
	CategoryConstant Category = iota
	CategoryFlow
	CategoryStack
	CategorySplice
	CategoryBitwise
	CategoryArithmetic
	CategoryCrypto
	CategoryLocktime
	CategoryDisabled
	CategoryInvalid
)

func (c Category) String() string {
	switch c {
	case CategoryConstant:
		return "constant"
	case CategoryFlow:
		return "flow"
	case CategoryStack:
		return "stack"
	case CategorySplice:
		return "splice"
	case CategoryBitwise:
		return "bitwise"
	case CategoryArithmetic:
		return "arithmetic"
	case CategoryCrypto:
		return "crypto"
	case CategoryLocktime:
		return "locktime"
	case CategoryDisabled:
		return "disabled"
	default:
		return "invalid"
	}
}

// Category reports which opcode.h range op falls in. It never needs to
// handle OP_INTERNAL_NOT: that pseudo-opcode is never present in a parsed
// Script, only synthesized inside the expression tree. The upgradable NOPs
// (OP_NOP1, OP_NOP4..OP_NOP10) have no category of their own and report
// CategoryInvalid.
func (op Opcode) Category() Category {
	switch {
	case op.IsDisabled():
		return CategoryDisabled
	case op == OP_VER || op == OP_VERIF || op == OP_VERNOTIF:
		return CategoryInvalid
	case op >= OP_0 && op <= OP_16:
		return CategoryConstant
	case op >= OP_NOP && op <= OP_RETURN:
		return CategoryFlow
	case op >= OP_TOALTSTACK && op <= OP_TUCK:
		return CategoryStack
	case op >= OP_CAT && op <= OP_SIZE:
		return CategorySplice
	case op >= OP_INVERT && op <= OP_EQUALVERIFY:
		return CategoryBitwise
	case op >= OP_1ADD && op <= OP_WITHIN:
		return CategoryArithmetic
	case (op >= OP_RIPEMD160 && op <= OP_CHECKMULTISIGVERIFY) || op == OP_CHECKSIGADD:
		return CategoryCrypto
	case op >= OP_CHECKLOCKTIMEVERIFY && op <= OP_CHECKSEQUENCEVERIFY:
		return CategoryLocktime
	default:
		return CategoryInvalid
	}
}

// FromName resolves a case-insensitive opcode name, with or without the
// "OP_" prefix, used by the ASM tokenizer. Internal opcodes (currently only
// OP_INTERNAL_NOT) are never resolved: they cannot appear in source text.
func FromName(name string) (Opcode, bool) {
	n := name
	if len(n) >= 3 && (n[0] == 'O' || n[0] == 'o') && (n[1] == 'P' || n[1] == 'p') && n[2] == '_' {
		n = n[3:]
	}
	upper := toUpperASCII(n)
	for op, full := range names {
		if op == OP_INTERNAL_NOT {
			continue
		}
		if len(full) > 3 && toUpperASCII(full[3:]) == upper {
			return op, true
		}
	}
	switch upper {
	case "FALSE":
		return OP_FALSE, true
	case "TRUE":
		return OP_TRUE, true
	case "CLTV":
		return OP_CLTV, true
	case "CSV":
		return OP_CSV, true
	}
	return 0, false
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// ErrUnknownOpcode describes a byte with no assigned name. Name and String
// do not return it: they report such a byte as "" and "UNKNOWN".
var ErrUnknownOpcode = fmt.Errorf("opcode: unknown opcode byte")
