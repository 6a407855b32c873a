// Package rut validates and formats Chilean RUT identifiers (a digit body
// followed by a modulus-11 check character).
package rut

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jrsteele09/seniorinteract/internal/errors"
)

var rutPattern = regexp.MustCompile(`^[0-9]+-[0-9kK]$`)

// Value is a parsed identifier. CheckDigit is always '0'-'9' or 'K'.
type Value struct {
	Body       string
	CheckDigit byte
}

// Parse splits a raw "<digits>-<check>" string into a Value.
// The check character is canonicalised to uppercase.
func Parse(raw string) (Value, error) {
	if !rutPattern.MatchString(raw) {
		return Value{}, fmt.Errorf("rut %q: %w", raw, errors.ErrInvalidFormat)
	}
	sep := strings.IndexByte(raw, '-')
	return Value{
		Body:       raw[:sep],
		CheckDigit: upper(raw[sep+1]),
	}, nil
}

// ComputeCheckDigit returns the modulus-11 check character for body.
// Digits are weighted 2,3,4,5,6,7,2,3... starting from the rightmost one.
func ComputeCheckDigit(body string) (byte, error) {
	if body == "" {
		return 0, fmt.Errorf("empty rut body: %w", errors.ErrInvalidFormat)
	}

	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("rut body %q: %w", body, errors.ErrInvalidFormat)
		}
		sum += int(c-'0') * weight
		if weight == 7 {
			weight = 2
		} else {
			weight++
		}
	}

	switch result := 11 - sum%11; result {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + result), nil
	}
}

// Validate reports whether raw is well formed and carries the right check digit.
func Validate(raw string) bool {
	v, err := Parse(raw)
	if err != nil {
		return false
	}
	return v.Valid()
}

// Format renders raw as "12.345.678-5". It never fails: anything other than
// digits and K is dropped, and inputs shorter than two characters come back
// as the cleaned string.
func Format(raw string) string {
	var cleaned strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if (c >= '0' && c <= '9') || c == 'k' || c == 'K' {
			cleaned.WriteByte(c)
		}
	}

	s := cleaned.String()
	if len(s) < 2 {
		return s
	}

	body := s[:len(s)-1]
	check := upper(s[len(s)-1])
	return groupThousands(body) + "-" + string(check)
}

// Valid reports whether the check digit matches the body.
func (v Value) Valid() bool {
	expected, err := ComputeCheckDigit(v.Body)
	if err != nil {
		return false
	}
	return expected == upper(v.CheckDigit)
}

// String returns the raw form without separators, e.g. "12345678-5".
func (v Value) String() string {
	if v.Body == "" {
		return ""
	}
	return v.Body + "-" + string(upper(v.CheckDigit))
}

// Formatted returns the grouped display form, e.g. "12.345.678-5".
func (v Value) Formatted() string {
	if v.Body == "" {
		return ""
	}
	return groupThousands(v.Body) + "-" + string(upper(v.CheckDigit))
}

func groupThousands(body string) string {
	if len(body) <= 3 {
		return body
	}

	var b strings.Builder
	lead := len(body) % 3
	if lead > 0 {
		b.WriteString(body[:lead])
	}
	for i := lead; i < len(body); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(body[i : i+3])
	}
	return b.String()
}

func upper(c byte) byte {
	if c == 'k' {
		return 'K'
	}
	return c
}
