package checksig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// canonicalSig builds a minimal canonical DER signature with the given
// single-byte, high-bit-clear R/S values, plus a trailing sighash byte.
func canonicalSig(r, s, hashType byte) []byte {
	return []byte{
		0x30, 0x06,
		0x02, 0x01, r,
		0x02, 0x01, s,
		hashType,
	}
}

func TestIsValidSignatureEncoding(t *testing.T) {
	require.True(t, IsValidSignatureEncoding(canonicalSig(0x01, 0x02, SighashAll)))
	require.False(t, IsValidSignatureEncoding(nil))
	require.False(t, IsValidSignatureEncoding([]byte{0x30}))
}

func TestIsValidSignatureEncodingRejectsBadTag(t *testing.T) {
	sig := canonicalSig(0x01, 0x02, SighashAll)
	sig[0] = 0x31
	require.False(t, IsValidSignatureEncoding(sig))
}

func TestIsValidSignatureEncodingRejectsNegativeR(t *testing.T) {
	sig := canonicalSig(0x80, 0x02, SighashAll)
	require.False(t, IsValidSignatureEncoding(sig))
}

func TestIsLowSAcceptsSmallS(t *testing.T) {
	sig := canonicalSig(0x01, 0x02, SighashAll)
	require.True(t, IsLowS(sig))
}

func TestIsLowSRejectsHighS(t *testing.T) {
	// A 32-byte S value at the curve order's upper half is high-S.
	highS := make([]byte, 33) // leading 0x00 pad keeps the sign bit clear
	highS[0] = 0x00
	for i := 1; i < len(highS); i++ {
		highS[i] = 0xff
	}
	sig := []byte{0x30, byte(2 + 2 + len(highS) + 2)}
	sig = append(sig, 0x02, 0x01, 0x01)
	sig = append(sig, 0x02, byte(len(highS)))
	sig = append(sig, highS...)
	sig = append(sig, SighashAll)
	sig[1] = byte(len(sig) - 3)

	require.True(t, IsValidSignatureEncoding(sig))
	require.False(t, IsLowS(sig))
}

func TestCheckPubKey(t *testing.T) {
	compressed := append([]byte{0x02}, make([]byte, 32)...)
	require.Equal(t, PubKeyCheckResult{Valid: true, Compressed: true}, CheckPubKey(compressed))

	uncompressed := append([]byte{0x04}, make([]byte, 64)...)
	require.Equal(t, PubKeyCheckResult{Valid: true, Compressed: false}, CheckPubKey(uncompressed))

	require.False(t, CheckPubKey([]byte{0x05}).Valid)
}

func TestIsValidSighashByte(t *testing.T) {
	require.True(t, IsValidSighashByte(SighashAll))
	require.True(t, IsValidSighashByte(SighashAll|SighashAnyoneCanPay))
	require.False(t, IsValidSighashByte(SighashDefault))
	require.False(t, IsValidSighashByte(0x05))
}
