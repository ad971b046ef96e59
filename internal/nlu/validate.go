package nlu

import (
	"strconv"
	"strings"
	"time"
)

// ValidateDate accepts MM/DD values with a real month/day combination.
// February 29 is accepted because the year is unknown at validation time.
func ValidateDate(value string) bool {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return false
	}
	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return false
	}
	// 2024 is a leap year, so 02/29 validates.
	return validMonthDay(2024, month, day)
}

// ValidateTime accepts HH:MM values on the 24-hour clock.
func ValidateTime(value string) bool {
	_, err := time.Parse("15:04", value)
	return err == nil
}

// ValidatePersonCount accepts positive integers, with or without a
// trailing 人 or 名 counter.
func ValidatePersonCount(value string) bool {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(value, "人"), "名")
	n, err := strconv.Atoi(trimmed)
	return err == nil && n > 0
}
