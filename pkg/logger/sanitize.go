package logger

import "strings"

// MaskIdentifier masks a login identifier for logging: first character
// kept, rest starred, domain TLD preserved for emails.
func MaskIdentifier(identifier string) string {
	if identifier == "" {
		return ""
	}

	at := strings.IndexByte(identifier, '@')
	if at < 0 {
		return maskWord(identifier)
	}

	local := maskWord(identifier[:at])
	domain := identifier[at+1:]
	if dot := strings.LastIndexByte(domain, '.'); dot > 0 {
		domain = strings.Repeat("*", dot) + domain[dot:]
	}
	return local + "@" + domain
}

func maskWord(s string) string {
	if len(s) <= 1 {
		return s
	}
	return s[:1] + strings.Repeat("*", len(s)-1)
}

// SanitizeQueryString reports whether a query string carries sensitive
// parameters and should be redacted wholesale from request logs.
func SanitizeQueryString(rawQuery string) bool {
	sensitive := []string{"password", "token", "secret", "auth", "email"}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitive {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
