package entity

import (
	"strings"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
)

// CountryCode is the dialing prefix every canonical phone starts with
const CountryCode = "254"

// CanonicalPhoneLength is the digit count of a canonical phone number
const CanonicalPhoneLength = 12

// CanonicalPhone is a 12-digit mobile number in international form without a plus sign
type CanonicalPhone string

// String returns the phone digits
func (p CanonicalPhone) String() string {
	return string(p)
}

// NormalizePhone canonicalizes a local or international mobile number.
// Accepted shapes: 07XXXXXXXX / 01XXXXXXXX, 2547XXXXXXXX / 2541XXXXXXXX, 7XXXXXXXX / 1XXXXXXXX.
func NormalizePhone(raw string) (CanonicalPhone, error) {
	digits := stripNonDigits(raw)

	var phone string
	switch {
	case strings.HasPrefix(digits, "0") && len(digits) == 10:
		phone = CountryCode + digits[1:]
	case strings.HasPrefix(digits, CountryCode) && len(digits) == CanonicalPhoneLength:
		phone = digits
	case isCarrierDigit(digits) && len(digits) == 9:
		phone = CountryCode + digits
	default:
		return "", errs.NewInvalidFormatError("phone", raw,
			"expected 07XXXXXXXX, 01XXXXXXXX, 254XXXXXXXXX or 7XXXXXXXX")
	}

	if !isCarrierDigit(phone[len(CountryCode):]) {
		return "", errs.NewInvalidFormatError("phone", raw, "number must start with 7 or 1 after the country code")
	}
	if len(phone) != CanonicalPhoneLength {
		return "", errs.NewInvalidFormatError("phone", raw, "canonical number must have 12 digits")
	}

	return CanonicalPhone(phone), nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isCarrierDigit reports whether s starts with one of the two mobile-range digits
func isCarrierDigit(s string) bool {
	return len(s) > 0 && (s[0] == '7' || s[0] == '1')
}
