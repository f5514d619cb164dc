// Package signing implements the request-signing scheme of the
// verification provider.
//
// Every API request carries an HMAC-SHA256 signature keyed by the
// shared API secret, hex encoded, and presented as
//
//	Authorization: hmac {apiKey}:{hexSignature}
//
// The signing input is the exact byte sequence of the request body for
// POST requests, or the literal request path for GET requests. Callers
// must sign the same bytes they transmit; any re-serialization
// invalidates the signature.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMissingKey is returned when the API key or secret is empty.
var ErrMissingKey = errors.New("missing api key or secret")

// Signer computes provider signatures for a fixed credential pair.
type Signer struct {
	apiKey string
	secret []byte
}

// NewSigner builds a Signer from the shared credentials.
func NewSigner(apiKey, apiSecret string) (*Signer, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, ErrMissingKey
	}
	return &Signer{apiKey: apiKey, secret: []byte(apiSecret)}, nil
}

// Sign returns the hex-encoded HMAC-SHA256 of payload.
func (s *Signer) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Authorization returns the full Authorization header value for payload.
func (s *Signer) Authorization(payload []byte) string {
	return "hmac " + s.apiKey + ":" + s.Sign(payload)
}
