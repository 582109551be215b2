package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// AU postcode: up to 4 digits (leading zeros tolerated on input)
	rePostcode = regexp.MustCompile(`^[0-9]{1,10}$`)
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	rePhone    = regexp.MustCompile(`^[0-9 +()-]{6,20}$`)
	reQ        = regexp.MustCompile(`^[A-Za-z0-9 _'\\-]{1,50}$`)
	reStatus   = regexp.MustCompile(`^(Listed|Leased|Unlisted)$`)
	reOrderSt  = regexp.MustCompile(`^(Pending|Confirmed|Cancelled)$`)
	reDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Postcode trims and checks shape only; band mapping happens in pricing.
func Postcode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 10 {
		return "", false
	}
	return s, rePostcode.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// Q validates a catalog search query.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Qty parses a quantity, defaulting to 1 and clamping to [1,99].
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 99 {
		return 99
	}
	return n
}

// Weeks parses a rental duration, defaulting to 1 and clamping to [1,50].
func Weeks(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	}
	return n
}

// ID parses a positive integer resource id.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil && n > 0
}

// Name validates a displayable name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

// ArtworkStatus validates the vendor-facing status enum.
func ArtworkStatus(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reStatus.MatchString(s)
}

// OrderStatus validates the admin-facing status enum.
func OrderStatus(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reOrderSt.MatchString(s)
}

// Date validates an optional YYYY-MM-DD field; empty is allowed.
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, reDate.MatchString(s)
}

// Password enforces a simple length window for login/registration.
func Password(s string) bool {
	l := len(s)
	return l >= 6 && l <= 255
}
