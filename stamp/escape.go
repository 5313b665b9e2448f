package stamp

import (
	"fmt"
	"strings"
)

const upperHex = "0123456789ABCDEF"

func shouldEscape(c byte) bool {
	return c < 0x21 || c > 0x7e || c == ':' || c == '%'
}

// escape percent-encodes the delimiter, '%' and any byte outside printable ASCII
func escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&0x0f])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// unescape reverses escape and rejects anything escape would not produce
func unescape(s string) (string, error) {
	if !strings.Contains(s, "%") {
		for i := 0; i < len(s); i++ {
			if shouldEscape(s[i]) {
				return "", fmt.Errorf("unescaped byte 0x%02x", s[i])
			}
		}
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			if shouldEscape(c) {
				return "", fmt.Errorf("unescaped byte 0x%02x", c)
			}
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated escape at %d", i)
		}
		hi, lo := strings.IndexByte(upperHex, s[i+1]), strings.IndexByte(upperHex, s[i+2])
		if hi < 0 || lo < 0 {
			return "", fmt.Errorf("bad escape %q", s[i:i+3])
		}
		v := byte(hi<<4 | lo)
		if !shouldEscape(v) {
			return "", fmt.Errorf("needless escape %q", s[i:i+3])
		}
		b.WriteByte(v)
		i += 2
	}
	return b.String(), nil
}

// IsLiteral reports whether s is written to the wire unchanged
func IsLiteral(s string) bool {
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			return false
		}
	}
	return true
}
