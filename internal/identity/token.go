package identity

import "strings"

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Malformed or absent headers report false, never a crash.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 3)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
