// Package locktime renders the raw uint32 argument of OP_CHECKLOCKTIMEVERIFY
// / OP_CHECKSEQUENCEVERIFY as the human-readable sentence a report would
// finish with "This TXO becomes spendable ...".
package locktime

import (
	"fmt"
	"time"
)

// SequenceLocktimeTypeFlag, set in a relative locktime, selects the
// time-based interpretation (512-second units) over the block-height one.
const SequenceLocktimeTypeFlag uint32 = 1 << 22

// SequenceLocktimeMask extracts the 16-bit magnitude from a relative
// locktime value, discarding the type flag and reserved bits.
const SequenceLocktimeMask uint32 = 0x0000ffff

// absoluteTimeThreshold is BIP113's boundary: absolute locktimes below this
// are a block height, at or above it a Unix timestamp.
const absoluteTimeThreshold = 500_000_000

// Type distinguishes a height-based locktime from a time-based one.
type Type int

const (
	TypeHeight Type = iota
	TypeTime
)

// NewType classifies value as Height or Time, under the absolute or
// relative threshold depending on relative.
func NewType(value uint32, relative bool) Type {
	threshold := uint32(absoluteTimeThreshold)
	if relative {
		threshold = SequenceLocktimeTypeFlag
	}
	if value < threshold {
		return TypeHeight
	}
	return TypeTime
}

// TypeEquals reports whether a and b classify to the same Type under the
// same relative/absolute interpretation — two locktime requirements must
// agree on this before one can be tightened to the other's maximum.
func TypeEquals(a, b uint32, relative bool) bool {
	return NewType(a, relative) == NewType(b, relative)
}

func absoluteHeightToString(n uint32) string {
	return fmt.Sprintf("at block %d", n)
}

func absoluteTimeToString(n uint32) string {
	t := time.Unix(int64(n), 0).UTC()
	return fmt.Sprintf("on %s (%d seconds since unix epoch)", t.Format("2006-01-02 15:04:05"), n)
}

func relativeHeightToString(n uint32) string {
	return fmt.Sprintf("in %d blocks", n)
}

func relativeTimeToString(n uint32) string {
	t := (n & uint32(SequenceLocktimeMask)) * 512

	units := []struct {
		suffix string
		size   uint32
	}{
		{"m", 60},
		{"h", 24},
		{"d", 999},
	}

	seconds := t % 60
	parts := []string{}
	prev := uint32(60)
	for _, u := range units {
		t /= prev
		if t == 0 {
			break
		}
		parts = append(parts, fmt.Sprintf("%d%s", t%u.size, u.suffix))
		prev = u.size
	}

	out := fmt.Sprintf("%ds", seconds)
	for i := 0; i < len(parts); i++ {
		out = parts[i] + " " + out
	}
	return "in " + out
}

// ToStringUnchecked renders n under the given relative/Type combination
// without reclassifying it — used when the caller already knows the Type
// (e.g. it was fixed by an earlier, tighter requirement).
func ToStringUnchecked(n uint32, relative bool, t Type) string {
	switch {
	case !relative && t == TypeHeight:
		return absoluteHeightToString(n)
	case !relative && t == TypeTime:
		return absoluteTimeToString(n)
	case relative && t == TypeHeight:
		return relativeHeightToString(n)
	default:
		return relativeTimeToString(n)
	}
}

// ToString classifies n and renders it, the usual entry point.
func ToString(n uint32, relative bool) string {
	return ToStringUnchecked(n, relative, NewType(n, relative))
}
