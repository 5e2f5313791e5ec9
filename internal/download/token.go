// Package download makes script result files available for retrieval: it
// extracts declared result files after an execution finishes and issues the
// access tokens that gate downloading them.
package download

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for token validation.
var (
	ErrTokenInvalid = errors.New("download token is invalid")
	ErrTokenExpired = errors.New("download token is expired")
)

// Signer issues and validates download tokens. A token is bound to one file
// path, the identity it was issued for, and its issue time; it proves nothing
// else. Tokens are derived from the server secret, so no storage is needed.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner creates a Signer with the given server secret and token lifetime.
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	return &Signer{secret: secret, ttl: ttl}
}

// Sign issues a token for the given file path and identity at the given time.
func (s *Signer) Sign(path, identity string, issued time.Time) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(issued.Unix(), 10))) +
		"." + base64.RawURLEncoding.EncodeToString(s.mac(payload(path, identity, issued)))
}

// Validate checks that a token was issued by this signer for the given path
// and identity and has not outlived the signer's TTL. Returns ErrTokenInvalid
// or ErrTokenExpired.
func (s *Signer) Validate(token, path, identity string, now time.Time) error {
	issuedPart, macPart, ok := strings.Cut(token, ".")
	if !ok {
		return ErrTokenInvalid
	}

	issuedRaw, err := base64.RawURLEncoding.DecodeString(issuedPart)
	if err != nil {
		return ErrTokenInvalid
	}
	unix, err := strconv.ParseInt(string(issuedRaw), 10, 64)
	if err != nil {
		return ErrTokenInvalid
	}
	issued := time.Unix(unix, 0)

	mac, err := base64.RawURLEncoding.DecodeString(macPart)
	if err != nil {
		return ErrTokenInvalid
	}
	if !hmac.Equal(mac, s.mac(payload(path, identity, issued))) {
		return ErrTokenInvalid
	}

	if issued.After(now) {
		return ErrTokenInvalid
	}
	if now.Sub(issued) > s.ttl {
		return ErrTokenExpired
	}
	return nil
}

func payload(path, identity string, issued time.Time) string {
	return fmt.Sprintf("%s|%s|%d", path, identity, issued.Unix())
}

func (s *Signer) mac(payload string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return h.Sum(nil)
}
