package script

import "github.com/wangxinyu2018/scriptanalyzer/scripterr"

// intMaxLen is the byte length of the largest script number this analyzer
// will decode without an explicit, wider max_len argument.
const intMaxLen = 5

// EncodeInt encodes n using Bitcoin Script's sign-magnitude, little-endian
// minimal encoding. Zero encodes to the empty byte string.
func EncodeInt(n int64) []byte {
	if n == 0 {
		return nil
	}

	var buf [intMaxLen]byte
	length := 0

	neg := n < 0
	abs := n
	if neg {
		abs = -abs
	}
	for abs != 0 {
		buf[length] = byte(abs)
		length++
		abs >>= 8
	}

	if buf[length-1]&0x80 != 0 {
		if neg {
			buf[length] = 0x80
		} else {
			buf[length] = 0x00
		}
		length++
	} else if neg {
		buf[length-1] |= 0x80
	}

	out := make([]byte, length)
	copy(out, buf[:length])
	return out
}

// CheckInt reports whether bytes is short enough to be a script number of
// at most maxLen bytes.
func CheckInt(bytes []byte, maxLen int) error {
	if len(bytes) > maxLen {
		return scripterr.New(scripterr.ErrNumOverflow)
	}
	return nil
}

// DecodeIntUnchecked decodes bytes as a script number without a length
// check. Callers must already know len(bytes) <= intMaxLen.
func DecodeIntUnchecked(bytes []byte) int64 {
	if len(bytes) == 0 {
		return 0
	}

	neg := bytes[len(bytes)-1]&0x80 != 0

	var buf [intMaxLen]byte
	copy(buf[:], bytes)
	if neg {
		buf[len(bytes)-1] &= 0x7f
	}

	var n uint64
	for i := 0; i < len(bytes); i++ {
		n |= uint64(buf[i]) << uint(i*8)
	}

	if neg {
		return -int64(n)
	}
	return int64(n)
}

// DecodeInt decodes bytes as a script number, rejecting anything longer
// than maxLen bytes.
func DecodeInt(bytes []byte, maxLen int) (int64, error) {
	if err := CheckInt(bytes, maxLen); err != nil {
		return 0, err
	}
	return DecodeIntUnchecked(bytes), nil
}

// True and False are the canonical boolean encodings: the empty byte
// string for false, and a single 0x01 byte for true.
var (
	False = []byte{}
	True  = []byte{0x01}
)

// EncodeBool returns the canonical boolean encoding of b.
func EncodeBool(b bool) []byte {
	if b {
		return True
	}
	return False
}

// DecodeBool applies Bitcoin Script's truthiness rule: a byte string is
// false if every byte is zero, except that a single trailing 0x80
// ("negative zero") is also false.
func DecodeBool(bytes []byte) bool {
	for i, b := range bytes {
		if b != 0 {
			return i != len(bytes)-1 || b != 0x80
		}
	}
	return false
}
