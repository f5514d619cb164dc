// Package client implements the signed HTTP client for the
// age-verification provider.
//
// The provider exposes two operations: starting a verification session
// and polling its status. Both are authenticated with an HMAC-SHA256
// signature (see the signing package). The signing input differs by
// method and is a fixed contract of the provider: POST requests sign
// the exact request body bytes, GET requests sign the literal request
// path.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kacy/age-verification/signing"
)

// Common errors returned by the client.
var (
	// ErrInvalidInput indicates a local precondition failure; no
	// network call was attempted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRequestFailed indicates a transport-level failure (DNS, TLS,
	// timeout, connection reset).
	ErrRequestFailed = errors.New("request failed")

	// ErrServer indicates a non-2xx response, or a 2xx response whose
	// body is unparseable or missing expected fields.
	ErrServer = errors.New("server error")
)

// Method selects a specific verification method for a session.
type Method string

// Verification methods accepted by the provider.
const (
	MethodAgeEstimation   Method = "ageEstimation"
	MethodEmail           Method = "email"
	MethodIDScan          Method = "idScan"
	MethodIDScanFaceMatch Method = "idScanFaceMatch"
	MethodMobile          Method = "mobile"
	MethodCreditCard      Method = "creditCard"
)

// Config holds configuration for the client.
type Config struct {
	// APIKey identifies the integrating application (required).
	APIKey string

	// APISecret is the shared HMAC signing secret (required).
	// It is only ever used as a signing key and never transmitted
	// or logged.
	APISecret string

	// BaseURL is the provider endpoint, e.g. "https://api.example.com"
	// (required).
	BaseURL string

	// HTTPClient overrides the default HTTP client (30 second timeout).
	// The client performs no retries and imposes no timeout of its own
	// beyond the HTTP client's.
	HTTPClient *http.Client
}

// Client performs signed requests against the verification provider.
// It holds no session state; concurrent calls do not interfere.
type Client struct {
	baseURL    string
	signer     *signing.Signer
	httpClient *http.Client
}

// VerificationRequest describes a new verification session.
type VerificationRequest struct {
	// CountryCode is the user's ISO 3166-1 alpha-2 country (required).
	CountryCode string

	// RedirectURL is the absolute application-owned URL the web flow
	// navigates to on completion (required).
	RedirectURL string

	// Method pins a specific verification method (optional).
	Method Method

	// BusinessSettingsID selects a provider-side settings profile (optional).
	BusinessSettingsID string

	// ExternalUserID is the integrator's identifier for the user (optional).
	ExternalUserID string

	// Email is the user's email address. Required when Stealth is set.
	Email string

	// Stealth requests the stealth flow variant.
	Stealth bool
}

// Session is one provider-side verification attempt.
// VerificationID never changes once issued; Status only reflects the
// server's last-reported value and is refreshed via CheckStatus.
type Session struct {
	// VerificationID is the opaque server-assigned session identifier.
	VerificationID string

	// VerificationURL is the absolute URL to render in an embedded browser.
	VerificationURL string

	// Status is the last status reported by the server.
	Status Status
}

const startPath = "/v2/auth/start"

// startPayload is the wire form of a start request. Field order is
// load-bearing: the marshalled bytes are the HMAC signing input and
// must match the transmitted body byte for byte, so the order is
// pinned by declaration order here and the payload is marshalled
// exactly once.
type startPayload struct {
	Country            string `json:"country"`
	RedirectURL        string `json:"redirect_url"`
	Method             string `json:"method,omitempty"`
	BusinessSettingsID string `json:"business_settings_id,omitempty"`
	ExternalUserID     string `json:"external_user_id,omitempty"`
	Email              string `json:"email,omitempty"`
	Stealth            bool   `json:"stealth,omitempty"`
}

type startResponse struct {
	StartVerificationURL string `json:"start_verification_url"`
	VerificationID       string `json:"verification_id"`
	VerificationStatus   string `json:"verification_status"`
}

type statusResponse struct {
	VerificationStatus string `json:"verification_status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a new client for the verification provider.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidInput)
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("%w: api secret is required", ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidInput)
	}

	signer, err := signing.NewSigner(cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		signer:     signer,
		httpClient: httpClient,
	}, nil
}

// StartVerification creates a new verification session. The returned
// session's VerificationURL must be rendered in an embedded browser;
// the session's status is then polled with CheckStatus.
//
// Optional request fields that are empty are omitted from the wire
// body entirely, never sent as empty strings.
func (c *Client) StartVerification(ctx context.Context, req *VerificationRequest) (*Session, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidInput)
	}
	if req.CountryCode == "" {
		return nil, fmt.Errorf("%w: country code is required", ErrInvalidInput)
	}
	if req.RedirectURL == "" {
		return nil, fmt.Errorf("%w: redirect URL is required", ErrInvalidInput)
	}
	if req.Stealth && req.Email == "" {
		return nil, fmt.Errorf("%w: stealth mode requires an email", ErrInvalidInput)
	}

	body, err := json.Marshal(startPayload{
		Country:            req.CountryCode,
		RedirectURL:        req.RedirectURL,
		Method:             string(req.Method),
		BusinessSettingsID: req.BusinessSettingsID,
		ExternalUserID:     req.ExternalUserID,
		Email:              req.Email,
		Stealth:            req.Stealth,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+startPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.signer.Authorization(body))

	raw, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var parsed startResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response body: %s", ErrServer, snippet(raw))
	}
	if parsed.StartVerificationURL == "" || parsed.VerificationID == "" || parsed.VerificationStatus == "" {
		return nil, fmt.Errorf("%w: incomplete response body: %s", ErrServer, snippet(raw))
	}

	return &Session{
		VerificationID:  parsed.VerificationID,
		VerificationURL: parsed.StartVerificationURL,
		Status:          ParseStatus(parsed.VerificationStatus),
	}, nil
}

// CheckStatus fetches the current status of a verification session.
// The signing input is the literal request path, not the (empty) body.
func (c *Client) CheckStatus(ctx context.Context, verificationID string) (Status, error) {
	if verificationID == "" {
		return StatusUnknown, fmt.Errorf("%w: verification ID is required", ErrInvalidInput)
	}

	path := "/v2/verification/" + verificationID + "/status"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return StatusUnknown, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	httpReq.Header.Set("Authorization", c.signer.Authorization([]byte(path)))

	raw, err := c.do(httpReq)
	if err != nil {
		return StatusUnknown, err
	}

	var parsed statusResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return StatusUnknown, fmt.Errorf("%w: malformed response body: %s", ErrServer, snippet(raw))
	}
	if parsed.VerificationStatus == "" {
		return StatusUnknown, fmt.Errorf("%w: incomplete response body: %s", ErrServer, snippet(raw))
	}

	return ParseStatus(parsed.VerificationStatus), nil
}

// do executes the request and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var parsed errorResponse
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != "" {
			return nil, fmt.Errorf("%w: %s (status %d)", ErrServer, parsed.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrServer, resp.StatusCode, snippet(raw))
	}

	return raw, nil
}

// snippet truncates a response body for use in error messages.
func snippet(raw []byte) string {
	const max = 256
	s := strings.TrimSpace(string(raw))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
