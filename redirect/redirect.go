// Package redirect decides, for each navigation attempt inside the
// embedded verification web flow, whether the flow has returned to the
// application's callback URL.
//
// Classification is a byte-wise prefix match and must stay synchronous
// and free of I/O: the embedded browser blocks on the decision before
// loading the candidate URL, and a detected callback must never be
// fetched (its query string can carry completion parameters).
package redirect

import (
	"net/url"
	"strings"
)

// Decision is the outcome of classifying one navigation attempt.
type Decision struct {
	// IsRedirect is true when the URL is the application callback,
	// meaning the verification web flow has completed.
	IsRedirect bool

	// ShouldContinue is false when the embedded browser must cancel
	// the navigation instead of loading the URL.
	ShouldContinue bool

	// OpenExternal is true when the URL uses a non-HTTP scheme (for
	// example a companion-app deep link) and should be handed to the
	// platform's external URL opener.
	OpenExternal bool
}

// Classify matches rawURL against the configured callback prefix.
//
// The comparison is case-sensitive and byte-wise on the full absolute
// URL string; no normalization of trailing slashes, query order, or
// percent-encoding is performed, since the provider produces a
// byte-stable prefix. An empty prefix disables detection entirely:
// every URL classifies as continue.
//
// URLs with a non-HTTP scheme that do not match the prefix are never
// loaded in the embedded browser; they classify as OpenExternal with
// navigation cancelled.
func Classify(rawURL, callbackPrefix string) Decision {
	if callbackPrefix != "" && strings.HasPrefix(rawURL, callbackPrefix) {
		return Decision{IsRedirect: true}
	}
	if isExternalScheme(rawURL) {
		return Decision{OpenExternal: true}
	}
	return Decision{ShouldContinue: true}
}

// Classifier carries a configured callback prefix.
type Classifier struct {
	callbackPrefix string
}

// NewClassifier creates a classifier for the given callback prefix.
// An empty prefix is allowed and disables detection.
func NewClassifier(callbackPrefix string) *Classifier {
	return &Classifier{callbackPrefix: callbackPrefix}
}

// Classify classifies one navigation attempt.
func (c *Classifier) Classify(rawURL string) Decision {
	return Classify(rawURL, c.callbackPrefix)
}

func isExternalScheme(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "", "http", "https":
		return false
	}
	return true
}
