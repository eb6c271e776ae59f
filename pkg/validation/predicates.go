package validation

import (
	"regexp"
	"strings"
	"time"
)

// EircodePattern matches an Irish Eircode: a routing key from the published
// list followed by a four character unique identifier. The letters O, S and B
// are accepted in place of the digits 0, 5 and 8, which OCR often confuses.
const EircodePattern = `\b(?:(a(4[125s]|6[37]|7[5s]|[8b][1-6s]|9[12468b])` +
	`|c1[5s]|d([0o][1-9sb]|1[0-8osb]|2[024o]|6w)|e(2[15s]|3[24]|4[15s]|[5s]3|91)|f(12|2[368b]` +
	`|3[15s]|4[25s]|[5s][26]|9[1-4])|h(1[2468b]|23|[5s][34]|6[25s]|[79]1)|k(3[246]|4[5s]|[5s]6|67|7[8b])` +
	`|n(3[79]|[49]1)|p(1[247]|2[45s]|3[126]|4[37]|[5s][16]|6[17]|7[25s]|[8b][15s])|r(14|21|3[25s]|4[25s]` +
	`|[5s][16]|9[35s])|t(12|23|34|4[5s]|[5s]6)|v(1[45s]|23|3[15s]|42|9[2-5s])|w(12|23|34|91)|x(3[5s]|42|91)` +
	`|y(14|2[15s]|3[45s]))\s?[acdefhknprtvwxy\d]{4})\b`

// NIPostcodePattern matches Northern Ireland (BT) postcodes.
// Districts: BT1-BT49, BT51-BT58, BT60-BT71, BT74-BT82, BT92-BT94.
// The inward code letters exclude C, I, K, M, O and V.
const NIPostcodePattern = `\bBT([1-9]|[1-4][0-9]|5[1-8]|6[0-9]|7[01]|7[4-9]|8[0-2]|9[2-4])` +
	`\s?\d[ABDEGHJLNPQRSTUWXYZ]{2}\b`

var (
	eircodeRe     = regexp.MustCompile(`(?i)^` + EircodePattern)
	niPostcodeRe  = regexp.MustCompile(`(?i)^` + NIPostcodePattern)
	emailRe       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe       = regexp.MustCompile(`^\d{10}$`)
	irishMobileRe = regexp.MustCompile(`^08[356789]\d{7}$`)
)

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsInteger reports whether s is a non-empty string of ASCII digits.
func IsInteger(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsDecimal reports whether s is ASCII digits with at most one decimal point.
func IsDecimal(s string) bool {
	return IsInteger(strings.Replace(s, ".", "", 1))
}

// IsDate reports whether s is a calendar date written as dd/mm/yyyy.
// Single digit days and months are accepted.
func IsDate(s string) bool {
	_, err := time.Parse("2/1/2006", s)
	return err == nil
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsPhoneNumber reports whether s is exactly ten digits.
func IsPhoneNumber(s string) bool {
	return phoneRe.MatchString(s)
}

// IsIrishMobile reports whether s is an Irish mobile number (083, 085-089).
func IsIrishMobile(s string) bool {
	return irishMobileRe.MatchString(s)
}

// IsEircode reports whether s begins with a valid Eircode, ignoring case.
func IsEircode(s string) bool {
	return eircodeRe.MatchString(s)
}

// IsNIPostcode reports whether s begins with a valid Northern Ireland postcode, ignoring case.
func IsNIPostcode(s string) bool {
	return niPostcodeRe.MatchString(s)
}
