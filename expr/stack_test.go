package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackMaterializesInputPlaceholders(t *testing.T) {
	s := NewStack()
	top := s.GetBack(0)

	ref, ok := top.(StackRef)
	require.True(t, ok)
	require.Equal(t, uint32(0), ref.Pos)
	require.Equal(t, uint32(1), s.ItemsUsed())
}

func TestStackMaterializesDeepestFirst(t *testing.T) {
	s := NewStack()
	// Materialize three placeholders at once; the deepest (bottom) one
	// should get position 2, the shallowest position 0.
	bottom := s.GetBack(2)
	top := s.GetBack(0)

	require.Equal(t, uint32(2), bottom.(StackRef).Pos)
	require.Equal(t, uint32(0), top.(StackRef).Pos)
	require.Equal(t, uint32(3), s.ItemsUsed())
}

func TestStackPushPop(t *testing.T) {
	s := NewStack()
	s.Push(NewBytes([]byte{1}))
	s.Push(NewBytes([]byte{2}))

	popped := s.Pop(2)
	require.Equal(t, []byte{1}, []byte(popped[0].(Bytes)))
	require.Equal(t, []byte{2}, []byte(popped[1].(Bytes)))
	require.Equal(t, 0, s.Len())
}

func TestStackExtendFromWithinBack(t *testing.T) {
	s := NewStack()
	s.Push(NewBytes([]byte{1}))
	s.Push(NewBytes([]byte{2}))
	s.ExtendFromWithinBack(2, 0) // OP_2DUP

	require.Equal(t, 4, s.Len())
	require.Equal(t, []byte{1}, []byte(s.GetBack(1).(Bytes)))
	require.Equal(t, []byte{2}, []byte(s.GetBack(0).(Bytes)))
}

func TestStackSwapBack(t *testing.T) {
	s := NewStack()
	s.Push(NewBytes([]byte{1}))
	s.Push(NewBytes([]byte{2}))
	s.SwapBack(0, 1)

	require.Equal(t, []byte{1}, []byte(s.GetBack(0).(Bytes)))
	require.Equal(t, []byte{2}, []byte(s.GetBack(1).(Bytes)))
}

func TestStackRemoveBack(t *testing.T) {
	s := NewStack()
	s.Push(NewBytes([]byte{1}))
	s.Push(NewBytes([]byte{2}))
	s.Push(NewBytes([]byte{3}))

	removed := s.RemoveBack(1)
	require.Equal(t, []byte{2}, []byte(removed.(Bytes)))
	require.Equal(t, 2, s.Len())
}

func TestStackCloneIsIndependent(t *testing.T) {
	s := NewStack()
	s.Push(NewBytes([]byte{1}))

	clone := s.Clone()
	clone.Push(NewBytes([]byte{2}))

	require.Equal(t, 1, s.Len())
	require.Equal(t, 2, clone.Len())
}
