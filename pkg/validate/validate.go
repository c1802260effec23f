package validate

import (
	"strings"
	"unicode"

	"github.com/ShiraazMoollatjie/goluhn"
)

func IsLuna(s string) bool {
	err := goluhn.Validate(s)
	return err == nil
}

// DigitsOnly drops spaces and dashes from card and account numbers.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// MaskNumber keeps the last four characters: "****1234".
func MaskNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****" + s
	}
	return "****" + s[len(s)-4:]
}

// MaskHandle masks the local part of a UPI id or email: "ab***@okbank".
func MaskHandle(s string) string {
	s = strings.TrimSpace(s)
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return MaskNumber(s)
	}
	local, domain := s[:at], s[at:]
	if len(local) <= 2 {
		return local + "***" + domain
	}
	return local[:2] + "***" + domain
}

func IsUPIID(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 && strings.Count(s, "@") == 1 && !strings.ContainsAny(s, " \t")
}

// IsIFSC checks the 11-character Indian bank branch code: 4 letters, a zero, 6 alphanumerics.
func IsIFSC(s string) bool {
	if len(s) != 11 || s[4] != '0' {
		return false
	}
	for i, r := range s {
		switch {
		case i < 4 && (r < 'A' || r > 'Z'):
			return false
		case i > 4 && !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'):
			return false
		}
	}
	return true
}
