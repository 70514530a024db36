package domain

import (
	"strings"
)

// NormalizeEmail canonicalizes an email address for uniqueness checks.
// Case folding applies to every provider. Google treats dots in the
// local part as insignificant and supports plus-addressing; Microsoft
// and Yahoo keep dots but also support plus-addressing. Unknown
// providers get the case-folded form only, so distinct spellings stay
// distinct rather than being merged on a guess.
//
// The address must already be format-checked; malformed input here is
// a programming error and returns ErrInvalidEmailFormat.
func NormalizeEmail(email string, provider AuthProvider) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndex(trimmed, "@")
	if at <= 0 || at == len(trimmed)-1 {
		return "", ErrInvalidEmailFormat
	}

	local := trimmed[:at]
	domainPart := trimmed[at+1:]

	switch provider {
	case AuthProviderGoogle:
		if plus := strings.Index(local, "+"); plus >= 0 {
			local = local[:plus]
		}
		local = strings.ReplaceAll(local, ".", "")
		// googlemail.com is an alias domain for gmail.com
		if domainPart == "googlemail.com" {
			domainPart = "gmail.com"
		}
	case AuthProviderMicrosoft, AuthProviderYahoo:
		if plus := strings.Index(local, "+"); plus >= 0 {
			local = local[:plus]
		}
	}

	if local == "" {
		return "", ErrInvalidEmailFormat
	}

	return local + "@" + domainPart, nil
}
