package ageverify

import (
	"net/http"

	"github.com/caarlos0/env/v11"

	"github.com/kacy/age-verification/client"
)

// Error taxonomy of the underlying client, re-exported so callers that
// only import the root package can branch with errors.Is.
var (
	ErrInvalidInput  = client.ErrInvalidInput
	ErrRequestFailed = client.ErrRequestFailed
	ErrServer        = client.ErrServer
)

// State is the lifecycle position of a verification flow.
type State string

// Flow states.
const (
	// StateIdle: no verification has been started.
	StateIdle State = "idle"

	// StateVerifying: the provider web flow is running in the
	// embedded browser.
	StateVerifying State = "verifying"

	// StateChecking: the callback redirect was detected and a status
	// check is due.
	StateChecking State = "checking"

	// StateCompleted: the session reached a terminal status.
	StateCompleted State = "completed"
)

// Config holds configuration for a verification flow.
type Config struct {
	// APIKey and APISecret authenticate requests to the provider (required).
	APIKey    string
	APISecret string

	// BaseURL is the provider endpoint, e.g. "https://api.example.com"
	// (required).
	BaseURL string

	// CallbackURL is the absolute application-owned URL the web flow
	// redirects to on completion (required). It is sent as the
	// session's redirect URL and doubles as the classifier prefix.
	CallbackURL string

	// Method optionally pins a verification method for all sessions
	// started by this flow.
	Method client.Method

	// HTTPClient overrides the default HTTP client (30 second timeout).
	HTTPClient *http.Client

	// OnStateChange is invoked after every flow state transition (optional).
	OnStateChange func(State)
}

// envConfig mirrors the env-loadable subset of Config.
type envConfig struct {
	APIKey      string `env:"AGEVERIFY_API_KEY"`
	APISecret   string `env:"AGEVERIFY_API_SECRET"`
	BaseURL     string `env:"AGEVERIFY_BASE_URL"`
	CallbackURL string `env:"AGEVERIFY_CALLBACK_URL"`
	Method      string `env:"AGEVERIFY_METHOD"`
}

// ConfigFromEnv loads a Config from AGEVERIFY_* environment variables.
// Missing values are not an error here; New reports them as invalid
// input so that precondition failures surface in one place.
func ConfigFromEnv() (Config, error) {
	parsed, err := env.ParseAs[envConfig]()
	if err != nil {
		return Config{}, err
	}
	return Config{
		APIKey:      parsed.APIKey,
		APISecret:   parsed.APISecret,
		BaseURL:     parsed.BaseURL,
		CallbackURL: parsed.CallbackURL,
		Method:      client.Method(parsed.Method),
	}, nil
}
