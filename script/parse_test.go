package script

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wangxinyu2018/scriptanalyzer/opcode"
)

func TestParseRoundTrip(t *testing.T) {
	raw := []byte{
		byte(opcode.OP_DUP), byte(opcode.OP_HASH160),
		0x14, // 20-byte push
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20,
		byte(opcode.OP_EQUALVERIFY), byte(opcode.OP_CHECKSIG),
	}

	s, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, s, 5)
	require.True(t, s[0].IsOp())
	require.Equal(t, opcode.OP_DUP, s[0].Op)
	require.False(t, s[2].IsOp())
	require.Len(t, s[2].Bytes, 20)

	require.Equal(t, raw, s.ToBytes())
}

func TestParsePushdata1(t *testing.T) {
	data := make([]byte, 200)
	raw := append([]byte{byte(opcode.OP_PUSHDATA1), byte(len(data))}, data...)

	s, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, s, 1)
	require.Len(t, s[0].Bytes, 200)
}

func TestParseTruncatedPushFails(t *testing.T) {
	raw := []byte{0x05, 1, 2} // claims a 5-byte push, only 2 bytes follow
	_, err := Parse(raw)
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ParseErrorUnexpectedEnd, perr.Kind)
}

func TestParseUnknownOpcodeFails(t *testing.T) {
	raw := []byte{0xbb} // unassigned opcode byte, between OP_CHECKSIGADD and OP_INVALIDOPCODE
	_, err := Parse(raw)
	require.Error(t, err)
}
