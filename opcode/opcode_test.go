package opcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameAndString(t *testing.T) {
	require.Equal(t, "OP_CHECKSIG", OP_CHECKSIG.Name())
	require.Equal(t, "OP_CHECKSIG", OP_CHECKSIG.String())
	require.Equal(t, "UNKNOWN", Opcode(0xbb).String())
	require.Equal(t, "", OP_INTERNAL_NOT.Name())
}

func TestIsDisabled(t *testing.T) {
	require.True(t, OP_CAT.IsDisabled())
	require.True(t, OP_MUL.IsDisabled())
	require.False(t, OP_ADD.IsDisabled())
}

func TestPushdataLength(t *testing.T) {
	n, ok := OP_PUSHDATA1.PushdataLength()
	require.True(t, ok)
	require.Equal(t, 1, n)

	n, ok = OP_PUSHDATA4.PushdataLength()
	require.True(t, ok)
	require.Equal(t, 4, n)

	_, ok = OP_DUP.PushdataLength()
	require.False(t, ok)
}

func TestReturnsBooleanAndNumber(t *testing.T) {
	require.True(t, OP_EQUAL.ReturnsBoolean())
	require.True(t, OP_EQUAL.ReturnsNumber())
	require.False(t, OP_SIZE.ReturnsBoolean())
	require.True(t, OP_SIZE.ReturnsNumber())
	require.False(t, OP_DUP.ReturnsNumber())
}

func TestCanReorderArgs(t *testing.T) {
	require.True(t, OP_ADD.CanReorderArgs())
	require.False(t, OP_SUB.CanReorderArgs())
	require.False(t, OP_CHECKSIG.CanReorderArgs())
}

func TestIsConditional(t *testing.T) {
	require.True(t, OP_IF.IsConditional())
	require.True(t, OP_ENDIF.IsConditional())
	require.False(t, OP_VERIFY.IsConditional())
}

func TestCategory(t *testing.T) {
	require.Equal(t, CategoryDisabled, OP_CAT.Category())
	require.Equal(t, CategoryInvalid, OP_VERIF.Category())
	require.Equal(t, CategoryConstant, OP_PUSHDATA2.Category())
	require.Equal(t, CategoryFlow, OP_IF.Category())
	require.Equal(t, CategoryStack, OP_DUP.Category())
	require.Equal(t, CategoryCrypto, OP_CHECKSIG.Category())
	require.Equal(t, CategoryCrypto, OP_CHECKSIGADD.Category())
	require.Equal(t, CategoryLocktime, OP_CHECKLOCKTIMEVERIFY.Category())
	require.Equal(t, "crypto", CategoryCrypto.String())
}

func TestFromName(t *testing.T) {
	op, ok := FromName("OP_CHECKSIG")
	require.True(t, ok)
	require.Equal(t, OP_CHECKSIG, op)

	op, ok = FromName("checksig")
	require.True(t, ok)
	require.Equal(t, OP_CHECKSIG, op)

	op, ok = FromName("cltv")
	require.True(t, ok)
	require.Equal(t, OP_CLTV, op)

	op, ok = FromName("0")
	require.True(t, ok)
	require.Equal(t, OP_0, op)

	_, ok = FromName("NOTANOPCODE")
	require.False(t, ok)
}
