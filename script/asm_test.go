package script

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wangxinyu2018/scriptanalyzer/opcode"
)

func TestParseASMOpcodesAndIntegers(t *testing.T) {
	s, err := ParseASM("OP_DUP OP_HASH160 <0102030405> OP_EQUALVERIFY OP_CHECKSIG")
	require.NoError(t, err)
	require.Len(t, s, 5)
	require.Equal(t, opcode.OP_DUP, s[0].Op)
	require.Equal(t, opcode.OP_HASH160, s[1].Op)
	require.Equal(t, []byte{1, 2, 3, 4, 5}, s[2].Bytes)
	require.Equal(t, opcode.OP_EQUALVERIFY, s[3].Op)
	require.Equal(t, opcode.OP_CHECKSIG, s[4].Op)
}

func TestParseASMSmallIntegers(t *testing.T) {
	s, err := ParseASM("0 1 16 -1")
	require.NoError(t, err)
	require.Len(t, s, 4)
	require.Equal(t, opcode.OP_0, s[0].Op)
	require.Equal(t, opcode.OP_1, s[1].Op)
	require.Equal(t, opcode.OP_16, s[2].Op)
	require.Equal(t, opcode.OP_1NEGATE, s[3].Op)
}

func TestParseASMLargerInteger(t *testing.T) {
	s, err := ParseASM("128")
	require.NoError(t, err)
	require.Len(t, s, 1)
	require.False(t, s[0].IsOp())
	require.Equal(t, []byte{0x80, 0x00}, s[0].Bytes)
}

func TestParseASMRejectsExplicitPushdata(t *testing.T) {
	_, err := ParseASM("OP_PUSHDATA1")
	require.Error(t, err)
}

func TestParseASMRejectsUnknownOpcode(t *testing.T) {
	_, err := ParseASM("OP_NOT_A_REAL_OPCODE")
	require.Error(t, err)
}
