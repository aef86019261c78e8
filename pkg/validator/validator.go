package validator

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func ValidatePhone(phone string) bool {
	cleanPhone := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '+' {
			return r
		}
		return -1
	}, phone)

	return phoneRegex.MatchString(cleanPhone)
}

func ValidatePassword(password string) bool {
	return len(password) >= 6
}

// ValidateDate проверяет дату формата YYYY-MM-DD.
func ValidateDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// ValidateClock проверяет время формата HH:MM.
func ValidateClock(clock string) bool {
	_, err := time.Parse("15:04", clock)
	return err == nil
}

// ParseDate разбирает дату формата YYYY-MM-DD в UTC-полночь.
func ParseDate(date string) (time.Time, error) {
	return time.Parse("2006-01-02", date)
}

func FormatPhone(phone string) string {
	cleanPhone := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '+' {
			return r
		}
		return -1
	}, phone)

	if !strings.HasPrefix(cleanPhone, "+") {
		if strings.HasPrefix(cleanPhone, "8") {
			cleanPhone = "+7" + cleanPhone[1:]
		} else if !strings.HasPrefix(cleanPhone, "7") {
			cleanPhone = "+7" + cleanPhone
		} else {
			cleanPhone = "+" + cleanPhone
		}
	}

	return cleanPhone
}
