package pow

import (
	"encoding/base64"
	"encoding/binary"
)

const maxCounterWidth = 8

var counterEncoding = base64.RawURLEncoding

// counter is the search nonce. It starts one byte wide and grows a byte at a
// time instead of wrapping, so every value it yields encodes differently.
type counter struct {
	value    uint64
	width    int
	maxWidth int
	buf      [maxCounterWidth]byte
}

func newCounter(maxWidth int) *counter {
	if maxWidth <= 0 || maxWidth > maxCounterWidth {
		maxWidth = maxCounterWidth
	}
	return &counter{width: 1, maxWidth: maxWidth}
}

// next advances the counter. It returns false once the widest encoding is
// used up; the caller must then change the salt and reset.
func (c *counter) next() bool {
	c.value++
	if c.width == maxCounterWidth {
		return c.value != 0
	}
	if c.value>>(8*uint(c.width)) == 0 {
		return true
	}
	if c.width == c.maxWidth {
		return false
	}
	c.width++
	return true
}

func (c *counter) reset() {
	c.value = 0
	c.width = 1
}

// appendTo writes the encoded counter to dst
func (c *counter) appendTo(dst []byte) []byte {
	binary.BigEndian.PutUint64(c.buf[:], c.value)
	raw := c.buf[maxCounterWidth-c.width:]
	n := counterEncoding.EncodedLen(len(raw))
	start := len(dst)
	for i := 0; i < n; i++ {
		dst = append(dst, 0)
	}
	counterEncoding.Encode(dst[start:], raw)
	return dst
}
