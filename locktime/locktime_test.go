package locktime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTypeAbsolute(t *testing.T) {
	require.Equal(t, TypeHeight, NewType(500_000, false))
	require.Equal(t, TypeTime, NewType(500_000_000, false))
}

func TestNewTypeRelative(t *testing.T) {
	require.Equal(t, TypeHeight, NewType(100, true))
	require.Equal(t, TypeTime, NewType(SequenceLocktimeTypeFlag|1, true))
}

func TestTypeEquals(t *testing.T) {
	require.True(t, TypeEquals(100, 200, false))
	require.False(t, TypeEquals(100, 500_000_000, false))
}

func TestAbsoluteHeightToString(t *testing.T) {
	require.Equal(t, "at block 700000", ToString(700000, false))
}

func TestAbsoluteTimeToString(t *testing.T) {
	s := ToString(500_000_000, false)
	require.Contains(t, s, "500000000 seconds since unix epoch")
}

func TestRelativeHeightToString(t *testing.T) {
	require.Equal(t, "in 144 blocks", ToString(144, true))
}

func TestRelativeTimeToStringOrdersLargestUnitFirst(t *testing.T) {
	// 200 raw 512-second units = 102400 seconds = 1 day, 4 hours, 26
	// minutes, 40 seconds; components must read largest-to-smallest.
	require.Equal(t, "in 1d 4h 26m 40s", ToString(SequenceLocktimeTypeFlag|200, true))
}

func TestRelativeTimeToStringMinutesAndSeconds(t *testing.T) {
	// A raw sequence field of 1, masked and scaled by 512 seconds/unit,
	// is 512 seconds: 8 minutes, 32 seconds.
	require.Equal(t, "in 8m 32s", relativeTimeToString(1))
}
