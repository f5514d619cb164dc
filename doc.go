// Package ageverify provides a client for integrating a third-party
// age-verification web service into mobile and web applications.
//
// The library covers the two pieces shared by every platform
// integration: a signed API client that starts and polls a remote
// verification session, and a redirect classifier that detects, from
// the embedded browser's navigation attempts, when the web flow has
// returned to the application's callback URL.
//
// # Basic Usage
//
//	flow, err := ageverify.New(ageverify.Config{
//	    APIKey:      os.Getenv("AGEVERIFY_API_KEY"),
//	    APISecret:   os.Getenv("AGEVERIFY_API_SECRET"),
//	    BaseURL:     "https://api.example.com",
//	    CallbackURL: "https://myapp.example.com/verified",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := flow.Start(ctx, ageverify.StartOptions{CountryCode: "gb"})
//	// render session.VerificationURL in an embedded browser, then for
//	// every navigation attempt:
//	decision := flow.HandleNavigation(candidateURL)
//	if !decision.ShouldContinue {
//	    // cancel the navigation; if decision.IsRedirect:
//	    status, err := flow.CheckStatus(ctx)
//	    _ = status.IsSuccess()
//	}
//
// # Subpackages
//
// The library is organized into the following subpackages:
//
//   - client: the signed HTTP client (start verification, check status)
//   - signing: the HMAC-SHA256 request-signing scheme
//   - redirect: callback-redirect classification for embedded browsers
//
// The root package ties them together in a small state machine (Flow)
// that platform adapters drive from their navigation callbacks.
package ageverify
