// Package linktoken signs and validates registration-link tokens handed out
// to prospective students.
package linktoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signer creates and validates HMAC-signed registration tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a signer with the provided secret and TTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Generate returns a signed token binding the link id to its audience
// (e.g. the program the registrant applies to).
func (s *Signer) Generate(linkID, audience string) (string, time.Time, error) {
	if linkID == "" {
		return "", time.Time{}, fmt.Errorf("linkID required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encodedAudience := base64.RawURLEncoding.EncodeToString([]byte(audience))
	payload := fmt.Sprintf("%s|%d|%s", linkID, expiresAt.Unix(), encodedAudience)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	token := strings.Join([]string{linkID, strconv.FormatInt(expiresAt.Unix(), 10), encodedAudience, signature}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded metadata.
func (s *Signer) Parse(token string) (linkID, audience string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("invalid token format")
	}
	linkID = parts[0]
	ts := parts[1]
	encodedAudience := parts[2]
	signature := parts[3]

	rawAudience, err := base64.RawURLEncoding.DecodeString(encodedAudience)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode audience: %w", err)
	}

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("invalid expiry timestamp")
	}
	expiresAt = time.Unix(expUnix, 0)

	payload := fmt.Sprintf("%s|%s|%s", linkID, ts, encodedAudience)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("invalid token signature")
	}
	if time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("token expired")
	}

	return linkID, string(rawAudience), expiresAt, nil
}
