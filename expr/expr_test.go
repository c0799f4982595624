package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wangxinyu2018/scriptanalyzer/context"
	"github.com/wangxinyu2018/scriptanalyzer/opcode"
	"github.com/wangxinyu2018/scriptanalyzer/script"
)

var legacyConsensus = context.New(context.ScriptVersionLegacy, context.ScriptRulesConsensusOnly)

func TestEqual(t *testing.T) {
	require.True(t, Equal(NewBytes([]byte{1, 2}), NewBytes([]byte{1, 2})))
	require.False(t, Equal(NewBytes([]byte{1, 2}), NewBytes([]byte{1, 3})))
	require.True(t, Equal(NewStackRef(3), NewStackRef(3)))
	require.False(t, Equal(NewStackRef(3), NewStackRef(4)))
	require.True(t, Equal(NewOp1(opcode.OP_SHA256, NewStackRef(0)), NewOp1(opcode.OP_SHA256, NewStackRef(0))))
	require.False(t, Equal(NewOp1(opcode.OP_SHA256, NewStackRef(0)), NewOp1(opcode.OP_SHA1, NewStackRef(0))))
}

func TestCompareMixedTypePriority(t *testing.T) {
	// Across types the order is Op < StackRef < Bytes (inverted from raw
	// priority values), so folded shapes like OP_EQUAL(<op>, <bytes>) stay
	// stable under sorting.
	op := NewOp1(opcode.OP_SHA256, NewStackRef(0))
	stackRef := NewStackRef(1)
	b := NewBytes([]byte{1})

	require.Less(t, Compare(op, stackRef), 0)
	require.Less(t, Compare(stackRef, b), 0)
	require.Less(t, Compare(op, b), 0)
	require.Greater(t, Compare(b, op), 0)
}

func TestSortRecursiveSkipsNonCommutativeArgs(t *testing.T) {
	sub := NewOp2(opcode.OP_SUB, NewBytes([]byte{2}), NewBytes([]byte{1}))
	exprs := []Expr{sub}
	SortRecursive(exprs)

	op := exprs[0].(*Op)
	require.Equal(t, []byte{2}, []byte(op.Args[0].(Bytes)))
	require.Equal(t, []byte{1}, []byte(op.Args[1].(Bytes)))
}

func TestReplaceAll(t *testing.T) {
	root := NewOp2(opcode.OP_BOOLAND, NewStackRef(0), NewOp1(opcode.OP_NOT, NewStackRef(0)))
	changed := ReplaceAll(&root, NewStackRef(0), NewBytesOwned(script.True))
	require.True(t, changed)

	op := root.(*Op)
	require.Equal(t, script.True, []byte(op.Args[0].(Bytes)))
	inner := op.Args[1].(*Op)
	require.Equal(t, script.True, []byte(inner.Args[0].(Bytes)))
}

func TestEvalFoldsSize(t *testing.T) {
	e := NewOp1(opcode.OP_SIZE, NewBytes([]byte{1, 2, 3}))
	changed, err := Eval(&e, legacyConsensus)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, script.EncodeInt(3), []byte(e.(Bytes)))
}

func TestEvalFoldsSha256(t *testing.T) {
	e := NewOp1(opcode.OP_SHA256, NewBytes(nil))
	changed, err := Eval(&e, legacyConsensus)
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, []byte(e.(Bytes)), 32)
}

func TestEvalFoldsDoubleNot(t *testing.T) {
	inner := NewOp2(opcode.OP_EQUAL, NewStackRef(0), NewStackRef(1)) // a boolean-returning Op
	e := NewOp1(opcode.OP_NOT, NewOp1(opcode.OP_NOT, inner))
	changed, err := Eval(&e, legacyConsensus)
	require.NoError(t, err)
	require.True(t, changed)
	require.Same(t, inner.(*Op), e.(*Op))
}

func TestEvalAddFoldsConstants(t *testing.T) {
	e := NewOp2(opcode.OP_ADD, NewBytes([]byte{2}), NewBytes([]byte{3}))
	changed, err := Eval(&e, legacyConsensus)
	require.NoError(t, err)
	require.True(t, changed)
	n, err := script.DecodeInt(e.(Bytes), 4)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
}

func TestEvalEqualBytesFolds(t *testing.T) {
	e := NewOp2(opcode.OP_EQUAL, NewBytes([]byte{1}), NewBytes([]byte{1}))
	changed, err := Eval(&e, legacyConsensus)
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, script.DecodeBool(e.(Bytes)))
}
