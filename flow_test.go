package ageverify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kacy/age-verification/client"
)

// newProviderStub serves the two provider endpoints with canned
// responses; statusBody is returned from the status endpoint.
func newProviderStub(t *testing.T, statusBody string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/auth/start", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"start_verification_url":"https://v.test/flow/1","verification_id":"v1","verification_status":"started"}`))
	})
	mux.HandleFunc("/v2/verification/v1/status", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		w.Write([]byte(statusBody))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		errMsg string
	}{
		{
			name: "missing callback URL",
			config: Config{
				APIKey:    "k",
				APISecret: "s",
				BaseURL:   "https://api.test",
			},
			errMsg: "callback URL is required",
		},
		{
			name: "missing credentials",
			config: Config{
				BaseURL:     "https://api.test",
				CallbackURL: "https://cb.test/done",
			},
			errMsg: "api key is required",
		},
		{
			name: "missing base URL",
			config: Config{
				APIKey:      "k",
				APISecret:   "s",
				CallbackURL: "https://cb.test/done",
			},
			errMsg: "base URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, err := New(tt.config)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, flow)
		})
	}
}

func TestFlow_EndToEnd(t *testing.T) {
	srv := newProviderStub(t, `{"verification_status":"approved"}`)

	var states []State
	flow, err := New(Config{
		APIKey:        "test-key",
		APISecret:     "test-secret",
		BaseURL:       srv.URL,
		CallbackURL:   "https://cb.test/done",
		OnStateChange: func(s State) { states = append(states, s) },
	})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, flow.State())
	assert.Nil(t, flow.Session())

	session, err := flow.Start(context.Background(), StartOptions{CountryCode: "gb"})
	require.NoError(t, err)
	assert.Equal(t, "v1", session.VerificationID)
	assert.Equal(t, "https://v.test/flow/1", session.VerificationURL)
	assert.Equal(t, client.StatusStarted, session.Status)
	assert.Equal(t, StateVerifying, flow.State())

	// In-flow navigation continues and leaves the state alone.
	decision := flow.HandleNavigation("https://v.test/flow/1/step2")
	assert.True(t, decision.ShouldContinue)
	assert.False(t, decision.IsRedirect)
	assert.Equal(t, StateVerifying, flow.State())

	// The callback redirect is intercepted.
	decision = flow.HandleNavigation("https://cb.test/done?session=v1")
	assert.True(t, decision.IsRedirect)
	assert.False(t, decision.ShouldContinue)
	assert.Equal(t, StateChecking, flow.State())

	status, err := flow.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.StatusApproved, status)
	assert.True(t, status.IsSuccess())
	assert.Equal(t, StateCompleted, flow.State())
	assert.Equal(t, client.StatusApproved, flow.Session().Status)

	assert.Equal(t, []State{StateVerifying, StateChecking, StateCompleted}, states)
}

func TestFlow_PendingReturnsToVerifying(t *testing.T) {
	srv := newProviderStub(t, `{"verification_status":"pending"}`)

	flow, err := New(Config{
		APIKey:      "test-key",
		APISecret:   "test-secret",
		BaseURL:     srv.URL,
		CallbackURL: "https://cb.test/done",
	})
	require.NoError(t, err)

	_, err = flow.Start(context.Background(), StartOptions{CountryCode: "gb"})
	require.NoError(t, err)

	flow.HandleNavigation("https://cb.test/done")
	require.Equal(t, StateChecking, flow.State())

	status, err := flow.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.StatusPending, status)
	assert.False(t, status.IsSuccess())
	assert.Equal(t, StateVerifying, flow.State())
}

func TestFlow_CheckStatusWithoutSession(t *testing.T) {
	flow, err := New(Config{
		APIKey:      "test-key",
		APISecret:   "test-secret",
		BaseURL:     "https://api.test",
		CallbackURL: "https://cb.test/done",
	})
	require.NoError(t, err)

	status, err := flow.CheckStatus(context.Background())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "no active session")
	assert.Equal(t, client.StatusUnknown, status)
}

func TestFlow_ExternalScheme(t *testing.T) {
	flow, err := New(Config{
		APIKey:      "test-key",
		APISecret:   "test-secret",
		BaseURL:     "https://api.test",
		CallbackURL: "https://cb.test/done",
	})
	require.NoError(t, err)

	decision := flow.HandleNavigation("companionapp://open?token=abc")
	assert.True(t, decision.OpenExternal)
	assert.False(t, decision.ShouldContinue)
	assert.False(t, decision.IsRedirect)
	assert.Equal(t, StateIdle, flow.State())
}

func TestFlow_RedirectBeforeStartDoesNotAdvance(t *testing.T) {
	flow, err := New(Config{
		APIKey:      "test-key",
		APISecret:   "test-secret",
		BaseURL:     "https://api.test",
		CallbackURL: "https://cb.test/done",
	})
	require.NoError(t, err)

	decision := flow.HandleNavigation("https://cb.test/done")
	assert.True(t, decision.IsRedirect)
	assert.Equal(t, StateIdle, flow.State())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AGEVERIFY_API_KEY", "env-key")
	t.Setenv("AGEVERIFY_API_SECRET", "env-secret")
	t.Setenv("AGEVERIFY_BASE_URL", "https://api.test")
	t.Setenv("AGEVERIFY_CALLBACK_URL", "https://cb.test/done")
	t.Setenv("AGEVERIFY_METHOD", "idScan")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "env-secret", cfg.APISecret)
	assert.Equal(t, "https://api.test", cfg.BaseURL)
	assert.Equal(t, "https://cb.test/done", cfg.CallbackURL)
	assert.Equal(t, client.MethodIDScan, cfg.Method)

	flow, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, flow.Client())
}
