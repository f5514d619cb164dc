package ageverify

import (
	"context"
	"fmt"
	"sync"

	"github.com/kacy/age-verification/client"
	"github.com/kacy/age-verification/redirect"
)

// Flow drives one verification session end to end: it starts the
// session, classifies every navigation attempt of the embedded
// browser, and polls the session status once the callback redirect is
// detected.
//
// This is the recommended way to use the library from a platform
// adapter. For advanced customization, use the client and redirect
// packages directly.
//
// HandleNavigation never performs I/O and may be called from the UI
// framework's navigation callback; status checks happen strictly
// after a navigation has been cancelled.
type Flow struct {
	client      *client.Client
	classifier  *redirect.Classifier
	callbackURL string
	method      client.Method
	onChange    func(State)

	mu      sync.RWMutex
	state   State
	session *client.Session
}

// StartOptions are the per-session parameters of Start.
type StartOptions struct {
	// CountryCode is the user's ISO 3166-1 alpha-2 country (required).
	CountryCode string

	// BusinessSettingsID selects a provider-side settings profile (optional).
	BusinessSettingsID string

	// ExternalUserID is the integrator's identifier for the user (optional).
	ExternalUserID string

	// Email is the user's email address. Required when Stealth is set.
	Email string

	// Stealth requests the stealth flow variant.
	Stealth bool
}

// New creates a verification flow from cfg.
func New(cfg Config) (*Flow, error) {
	if cfg.CallbackURL == "" {
		return nil, fmt.Errorf("%w: callback URL is required", ErrInvalidInput)
	}

	c, err := client.NewClient(client.Config{
		APIKey:     cfg.APIKey,
		APISecret:  cfg.APISecret,
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	return &Flow{
		client:      c,
		classifier:  redirect.NewClassifier(cfg.CallbackURL),
		callbackURL: cfg.CallbackURL,
		method:      cfg.Method,
		onChange:    cfg.OnStateChange,
		state:       StateIdle,
	}, nil
}

// Start begins a new verification session. The returned session's
// VerificationURL must be rendered in an embedded browser whose
// navigation attempts are routed through HandleNavigation.
//
// Starting again replaces the active session; sessions are independent
// and the provider keeps no client-side state between them.
func (f *Flow) Start(ctx context.Context, opts StartOptions) (*client.Session, error) {
	session, err := f.client.StartVerification(ctx, &client.VerificationRequest{
		CountryCode:        opts.CountryCode,
		RedirectURL:        f.callbackURL,
		Method:             f.method,
		BusinessSettingsID: opts.BusinessSettingsID,
		ExternalUserID:     opts.ExternalUserID,
		Email:              opts.Email,
		Stealth:            opts.Stealth,
	})
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.session = session
	f.state = StateVerifying
	f.mu.Unlock()
	f.notify(StateVerifying)

	return session, nil
}

// HandleNavigation classifies one navigation attempt from the embedded
// browser. When the decision reports a detected redirect the flow
// moves to StateChecking; the caller must cancel the navigation and
// call CheckStatus.
func (f *Flow) HandleNavigation(rawURL string) redirect.Decision {
	decision := f.classifier.Classify(rawURL)
	if !decision.IsRedirect {
		return decision
	}

	f.mu.Lock()
	changed := f.state == StateVerifying
	if changed {
		f.state = StateChecking
	}
	f.mu.Unlock()
	if changed {
		f.notify(StateChecking)
	}

	return decision
}

// CheckStatus refreshes the active session's status. A terminal status
// completes the flow; anything else returns it to StateVerifying so
// the caller may poll again.
func (f *Flow) CheckStatus(ctx context.Context) (client.Status, error) {
	f.mu.RLock()
	session := f.session
	f.mu.RUnlock()
	if session == nil {
		return client.StatusUnknown, fmt.Errorf("%w: no active session", ErrInvalidInput)
	}

	status, err := f.client.CheckStatus(ctx, session.VerificationID)
	if err != nil {
		return client.StatusUnknown, err
	}

	next := StateVerifying
	if status.IsTerminal() {
		next = StateCompleted
	}

	f.mu.Lock()
	session.Status = status
	changed := f.state != next
	f.state = next
	f.mu.Unlock()
	if changed {
		f.notify(next)
	}

	return status, nil
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Session returns the active session, or nil before Start.
func (f *Flow) Session() *client.Session {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.session
}

// Client returns the underlying signed client for advanced use cases.
func (f *Flow) Client() *client.Client {
	return f.client
}

func (f *Flow) notify(s State) {
	if f.onChange != nil {
		f.onChange(s)
	}
}
