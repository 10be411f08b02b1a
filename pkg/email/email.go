// Package email derives presentation values from email addresses.
package email

import (
	"strings"
	"unicode"
)

// DisplayName turns the local part of an address into a "First Last" name,
// e.g. "jane.doe+cases@precinct.gov" becomes "Jane Doe". Digits are dropped.
// Addresses with nothing usable yield "Casevault User".
func DisplayName(address string) string {
	local := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		local = address[:at]
	}
	if plus := strings.IndexByte(local, '+'); plus >= 0 {
		local = local[:plus]
	}

	words := strings.FieldsFunc(local, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	switch len(words) {
	case 0:
		return "Casevault User"
	case 1:
		return title(words[0])
	default:
		return title(words[0]) + " " + title(words[len(words)-1])
	}
}

func title(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
