package stamp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Version is the only protocol version understood by this package
	Version = 1
	// Delimiter separates the wire fields
	Delimiter = ":"
	// DateLayout is the timestamp layout written by minting
	DateLayout = "20060102150405"

	fieldCount = 7
)

// dateLayouts are keyed by their length, all parsed as UTC
var dateLayouts = map[int]string{
	6:  "060102",
	10: "0601021504",
	12: "060102150405",
	14: DateLayout,
}

// Stamp is one hashcash proof-of-work token
type Stamp struct {
	Version   int
	Bits      uint
	Date      string
	Resource  string
	Extension string
	Rand      string
	Counter   string
}

// Format renders the canonical wire form
func (s *Stamp) Format() string {
	var b strings.Builder
	b.WriteString(s.Prefix())
	b.WriteString(s.Counter)
	return b.String()
}

// String implements fmt.Stringer
func (s *Stamp) String() string {
	return s.Format()
}

// Prefix is the wire form up to and including the delimiter before the counter
func (s *Stamp) Prefix() string {
	return strings.Join([]string{
		strconv.Itoa(s.Version),
		strconv.FormatUint(uint64(s.Bits), 10),
		s.Date,
		escape(s.Resource),
		escape(s.Extension),
		s.Rand,
		"",
	}, Delimiter)
}

// Time decodes the stamp date
func (s *Stamp) Time() (time.Time, error) {
	layout, ok := dateLayouts[len(s.Date)]
	if !ok || !isDigits(s.Date) {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrParse, s.Date)
	}
	t, err := time.ParseInLocation(layout, s.Date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrParse, s.Date)
	}
	return t, nil
}

// ZeroBits counts the leading zero bits of the stamp digest
func (s *Stamp) ZeroBits(alg Algorithm) uint {
	return LeadingZeroBits(alg.Sum(s.Format()))
}

// Parse decodes a wire string. Only canonical encodings are accepted, so
// Parse(w).Format() == w for every w it returns without error.
func Parse(wire string) (*Stamp, error) {
	fields := strings.Split(wire, Delimiter)
	if len(fields) != fieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrParse, fieldCount, len(fields))
	}

	version, err := parseNumber(fields[0], 9)
	if err != nil {
		return nil, fmt.Errorf("%w: version: %v", ErrParse, err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrParse, version)
	}
	bits, err := parseNumber(fields[1], 3)
	if err != nil {
		return nil, fmt.Errorf("%w: bits: %v", ErrParse, err)
	}

	s := &Stamp{
		Version: int(version),
		Bits:    uint(bits),
		Date:    fields[2],
		Rand:    fields[5],
		Counter: fields[6],
	}
	if _, err := s.Time(); err != nil {
		return nil, err
	}
	if s.Resource, err = unescape(fields[3]); err != nil {
		return nil, fmt.Errorf("%w: resource: %v", ErrParse, err)
	}
	if s.Resource == "" {
		return nil, fmt.Errorf("%w: empty resource", ErrParse)
	}
	if s.Extension, err = unescape(fields[4]); err != nil {
		return nil, fmt.Errorf("%w: extension: %v", ErrParse, err)
	}
	if !isToken(s.Rand) {
		return nil, fmt.Errorf("%w: bad rand %q", ErrParse, s.Rand)
	}
	if !isToken(s.Counter) {
		return nil, fmt.Errorf("%w: bad counter %q", ErrParse, s.Counter)
	}
	return s, nil
}

func parseNumber(field string, maxDigits int) (uint64, error) {
	if field == "" || len(field) > maxDigits || !isDigits(field) {
		return 0, fmt.Errorf("not a number: %q", field)
	}
	if len(field) > 1 && field[0] == '0' {
		return 0, fmt.Errorf("leading zero: %q", field)
	}
	return strconv.ParseUint(field, 10, 64)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isToken accepts the standard and url-safe base64 alphabets
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+', c == '/', c == '=', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
