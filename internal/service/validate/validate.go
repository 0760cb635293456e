package validate

import (
	"errors"
)

// TCKN checks the Turkish national identification number:
// 11 digits, the first one is not zero and the last two are check digits
func TCKN(number string) error {
	if len(number) != 11 {
		return errors.New("number must be 11 digits long")
	}

	// It's ok to work with string as bytes here
	digits := make([]int, 0, len(number))
	for i := range len(number) {
		n := number[i]
		if n < '0' || n > '9' {
			return errors.New("number contains invalid characters")
		}
		digits = append(digits, int(n-'0'))
	}

	if digits[0] == 0 {
		return errors.New("number must not start with zero")
	}

	odd := digits[0] + digits[2] + digits[4] + digits[6] + digits[8]
	even := digits[1] + digits[3] + digits[5] + digits[7]

	// Go remainder keeps the sign of the dividend
	tenth := ((odd*7-even)%10 + 10) % 10
	if digits[9] != tenth {
		return errors.New("number checksum is invalid")
	}

	sum := 0
	for _, digit := range digits[:10] {
		sum += digit
	}
	if digits[10] != sum%10 {
		return errors.New("number checksum is invalid")
	}

	return nil
}
