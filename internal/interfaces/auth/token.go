package auth

import (
	"net/http"
	"strings"
)

// ExtractToken pulls the bearer credential from a connect request. Socket and
// stream clients may pass it either as a handshake query field or as an
// Authorization header.
func ExtractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}

	return ""
}
