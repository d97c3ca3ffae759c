package observability

import (
	"net/http"
	"time"

	sentryhttpclient "github.com/getsentry/sentry-go/httpclient"
)

// tracePropagationTargets are the payment and email APIs that receive
// sentry-trace headers.
var tracePropagationTargets = []string{
	"api.stripe.com",
	"api-m.paypal.com",
	"api-m.sandbox.paypal.com",
	"api.resend.com",
}

// WrapRoundTripper records an outbound span for every request.
func WrapRoundTripper(base http.RoundTripper) http.RoundTripper {
	return sentryhttpclient.NewSentryRoundTripper(
		base,
		sentryhttpclient.WithTracePropagationTargets(tracePropagationTargets),
	)
}

// NewHTTPClient returns a traced client for the Stripe and PayPal APIs.
func NewHTTPClient(timeout time.Duration) *http.Client {
	client := &http.Client{
		Transport: WrapRoundTripper(http.DefaultTransport),
	}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return client
}
