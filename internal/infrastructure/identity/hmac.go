package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"go-notify-hub/internal/domain/port"
)

// ErrInvalidToken is returned for malformed or badly signed credentials.
var ErrInvalidToken = errors.New("invalid token")

// HMACVerifier validates tokens of the form "<userID>:<hex hmac-sha256>".
// It stands in for the platform's session service behind the IdentityVerifier
// port.
type HMACVerifier struct {
	secret []byte
}

var _ port.IdentityVerifier = (*HMACVerifier)(nil)

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Verify checks the token signature and returns the embedded user id.
func (v *HMACVerifier) Verify(ctx context.Context, token string) (string, error) {
	userID, signature, ok := strings.Cut(token, ":")
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}

	want, err := hex.DecodeString(signature)
	if err != nil {
		return "", ErrInvalidToken
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(userID))
	if !hmac.Equal(mac.Sum(nil), want) {
		return "", ErrInvalidToken
	}

	return userID, nil
}

// Sign issues a token for userID. Used by tooling and tests; production
// tokens come from the identity service this verifier mirrors.
func (v *HMACVerifier) Sign(userID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(userID))
	return userID + ":" + hex.EncodeToString(mac.Sum(nil))
}
