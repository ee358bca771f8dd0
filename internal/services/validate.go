package services

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

var mobilePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

func checkText(field, value string, min, max int) error {
	n := len([]rune(strings.TrimSpace(value)))
	if n < min || n > max {
		return apperr.Validation(fmt.Sprintf("%s must be between %d and %d characters", field, min, max))
	}
	return nil
}

func checkMobile(value string) error {
	if !mobilePattern.MatchString(strings.TrimSpace(value)) {
		return apperr.Validation("Mobile number must contain 10 to 15 digits")
	}
	return nil
}

func checkEmail(value string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	if err != nil || addr.Address != strings.TrimSpace(value) {
		return apperr.Validation("Invalid email address")
	}
	return nil
}

func checkGender(value string) error {
	switch value {
	case "male", "female", "other":
		return nil
	}
	return apperr.Validation("Gender must be male, female or other")
}

// checkPassword requires eight characters with at least one letter and one digit.
func checkPassword(value string) error {
	var letter, digit bool
	for _, r := range value {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if len(value) < 8 || !letter || !digit {
		return apperr.Validation("Password must be at least 8 characters and contain a letter and a number")
	}
	if len(value) > utils.MaxPasswordBytes {
		return apperr.Validation("Password must be at most 72 bytes")
	}
	return nil
}

// checkClock accepts "HH:MM" or "HH:MM:SS" and returns "HH:MM:SS".
func checkClock(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", apperr.Validation(field + " must be formatted as HH:MM or HH:MM:SS")
}

// notPast parses a schedule date. A bare calendar day is accepted for today;
// a timestamp must not be earlier than now.
func (b *base) notPast(value string) (time.Time, error) {
	t, err := b.parseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	now := b.clock()
	past := t.Before(now)
	if len(strings.TrimSpace(value)) == len("2006-01-02") {
		past = t.Before(startOfDay(now))
	}
	if past {
		return time.Time{}, apperr.Validation("Appointment date cannot be in the past")
	}
	return t, nil
}
