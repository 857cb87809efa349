package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteVerifier asks the identity provider's token-info endpoint about a token.
type RemoteVerifier struct {
	client *resty.Client
	url    string
}

type tokenInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// NewRemoteVerifier creates a verifier calling url with the bearer token.
func NewRemoteVerifier(url string) *RemoteVerifier {
	c := resty.New().
		SetHeader("Accept", "application/json").
		SetTimeout(5 * time.Second)
	return &RemoteVerifier{client: c, url: url}
}

// Verify accepts the token only when the provider answers 200 with a subject and email.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var info tokenInfo
	resp, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&info).
		Get(v.url)
	if err != nil {
		return nil, fmt.Errorf("%w: token-info request: %v", ErrUnauthorized, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: token-info status %d", ErrUnauthorized, resp.StatusCode())
	}

	return newIdentity(info.Sub, info.Email)
}
