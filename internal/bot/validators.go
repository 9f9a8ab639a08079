package bot

import (
	"regexp"
	"strings"
)

var (
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
	emailPattern   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

	// "10 AM - 12 PM" or "10:30 am - 12:30 pm"; hours 1-12 only.
	slot12hPattern = regexp.MustCompile(`^(?i:(1[0-2]|0?[1-9])(:[0-5][0-9])? ?(AM|PM) ?- ?(1[0-2]|0?[1-9])(:[0-5][0-9])? ?(AM|PM))$`)
	// "14:00 - 16:00"; hours 00-23, minutes 00-59.
	slot24hPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9] ?- ?([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func IsValidPhone(input string) bool {
	return phonePattern.MatchString(input)
}

func IsValidPincode(input string) bool {
	return pincodePattern.MatchString(input)
}

func IsValidEmail(input string) bool {
	return emailPattern.MatchString(input)
}

// IsValidTimeSlot accepts a 12-hour range like "10 AM - 12 PM" or a 24-hour
// range like "14:00 - 16:00".
func IsValidTimeSlot(input string) bool {
	return slot12hPattern.MatchString(input) || slot24hPattern.MatchString(input)
}

func isYes(input string) bool {
	switch strings.ToLower(input) {
	case "yes", "y":
		return true
	}
	return false
}

func isNo(input string) bool {
	switch strings.ToLower(input) {
	case "no", "n":
		return true
	}
	return false
}
