package directory

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenSource yields a bearer token for one directory call. Tokens are
// short-lived; the client asks for a fresh one per call and never stores
// them itself.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ClientCredentialsTokenSource obtains tokens from the identity provider
// via the OAuth2 client-credentials grant. Caching and renewal follow the
// provider's token lifetime (oauth2 reuses a token only until it expires).
type ClientCredentialsTokenSource struct {
	ts oauth2.TokenSource
}

// NewClientCredentialsTokenSource builds a token source for the given IdP.
// audience is the directory API identifier registered with the provider.
// timeout bounds each token fetch: acquisition is a suspension point like
// any directory call and must not hang past the per-call budget.
func NewClientCredentialsTokenSource(tokenURL, clientID, clientSecret, audience string, timeout time.Duration) *ClientCredentialsTokenSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	if audience != "" {
		conf.EndpointParams = url.Values{"audience": {audience}}
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	return &ClientCredentialsTokenSource{ts: conf.TokenSource(ctx)}
}

func (s *ClientCredentialsTokenSource) Token(ctx context.Context) (string, error) {
	tok, err := s.ts.Token()
	if err != nil {
		if isTimeout(err) {
			return "", &TimeoutError{Op: "token acquisition"}
		}
		return "", &AuthTokenError{Err: err}
	}
	return tok.AccessToken, nil
}

// StaticTokenSource returns a fixed token. Test use only.
type StaticTokenSource string

func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	return string(s), nil
}
