// Package checksig ports the static, signature-shape checks
// OP_CHECKSIG/OP_CHECKSIGVERIFY/OP_CHECKMULTISIG(VERIFY) can perform without
// ever touching a real secp256k1 curve point or transaction digest: pubkey
// shape, DER canonicity (BIP66), sighash byte validity, and low-S
// standardness (BIP62).
package checksig

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	set "gopkg.in/fatih/set.v0"
)

const (
	SighashDefault     byte = 0
	SighashAll         byte = 1
	SighashNone        byte = 2
	SighashSingle      byte = 3
	SighashAnyoneCanPay byte = 128
)

// SigHashTypes is the set of hash-type bytes that may terminate a
// signature; SighashDefault may not (it's Tapscript-only and implicit,
// never appended).
var SigHashTypes = set.New(
	SighashAll,
	SighashNone,
	SighashSingle,
	SighashAll|SighashAnyoneCanPay,
	SighashNone|SighashAnyoneCanPay,
	SighashSingle|SighashAnyoneCanPay,
)

// IsValidSighashByte reports whether b is one of the six allowed
// terminating hash-type bytes for a pre-Tapscript signature.
func IsValidSighashByte(b byte) bool {
	return SigHashTypes.Has(b)
}

// PubKeyCheckResult reports the outcome of CheckPubKey.
type PubKeyCheckResult struct {
	Valid      bool
	Compressed bool
}

// CheckPubKey validates pubKey's shape against the two pre-Tapscript
// encodings: compressed (33 bytes, 0x02/0x03 prefix) and uncompressed
// (65 bytes, 0x04 prefix). It does not check the key actually lies on the
// curve.
func CheckPubKey(pubKey []byte) PubKeyCheckResult {
	switch {
	case len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03):
		return PubKeyCheckResult{Valid: true, Compressed: true}
	case len(pubKey) == 65 && pubKey[0] == 0x04:
		return PubKeyCheckResult{Valid: true, Compressed: false}
	default:
		return PubKeyCheckResult{}
	}
}

// IsValidSignatureEncoding ports Bitcoin Core's
// src/script/interpreter.cpp IsValidSignatureEncoding (consensus-critical
// since BIP66): a canonical DER signature is
// <30> <total len> <02> <len R> <R> <02> <len S> <S> <hashtype>, where R
// and S are non-negative, minimally encoded big-endian integers.
func IsValidSignatureEncoding(sig []byte) bool {
	if len(sig) < 9 || len(sig) > 73 {
		return false
	}
	if sig[0] != 0x30 {
		return false
	}
	if sig[1] != byte(len(sig))-3 {
		return false
	}

	lenR := int(sig[3])
	if 5+lenR >= len(sig) {
		return false
	}
	lenS := int(sig[5+lenR])

	if lenR+lenS+7 != len(sig) {
		return false
	}

	if sig[2] != 0x02 {
		return false
	}
	if lenR == 0 {
		return false
	}
	if sig[4]&0x80 != 0 {
		return false
	}
	if lenR > 1 && sig[4] == 0x00 && sig[5]&0x80 == 0 {
		return false
	}

	if sig[lenR+4] != 0x02 {
		return false
	}
	if lenS == 0 {
		return false
	}
	if sig[lenR+6]&0x80 != 0 {
		return false
	}
	if lenS > 1 && sig[lenR+6] == 0x00 && sig[lenR+7]&0x80 == 0 {
		return false
	}

	return true
}

// halfOrder is half of secp256k1's group order N, the BIP62 threshold a
// signature's S value must not exceed.
var halfOrder = new(big.Int).Rsh(btcec.S256().N, 1)

// IsLowS reports whether a DER-encoded signature's S value is at most
// half the curve order, the BIP62 standardness rule Bitcoin Core enforces
// under SCRIPT_VERIFY_LOW_S. Callers must already have validated sig with
// IsValidSignatureEncoding; this extracts S assuming canonical DER shape.
func IsLowS(sig []byte) bool {
	if !IsValidSignatureEncoding(sig) {
		return false
	}
	lenR := int(sig[3])
	lenS := int(sig[5+lenR])
	sBytes := sig[lenR+6 : lenR+6+lenS]

	s := new(big.Int).SetBytes(sBytes)
	return s.Cmp(halfOrder) <= 0
}
