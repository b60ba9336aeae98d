// Package spotify finds playlists and tracks matching the mood of a
// conversation, using the Spotify Web API with client-credentials auth.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const tokenURL = "https://accounts.spotify.com/api/token"

// tokenSkew renews the token a minute before Spotify expires it.
const tokenSkew = 60 * time.Second

// AuthClient performs the client-credentials flow and caches the token until
// shortly before expiry.
type AuthClient struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewAuthClient creates an AuthClient.
func NewAuthClient(clientID, clientSecret string) *AuthClient {
	return &AuthClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// tokenRespBody is the subset of the token response we care about.
type tokenRespBody struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken returns a valid token, refreshing it when needed.
func (a *AuthClient) AccessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.expiresAt) {
		return a.token, nil
	}

	if a.clientID == "" || a.clientSecret == "" {
		return "", fmt.Errorf("Spotify credentials are missing")
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error during authentication: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := strings.TrimSpace(string(raw))
		var errBody struct {
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(raw, &errBody) == nil && errBody.ErrorDescription != "" {
			detail = errBody.ErrorDescription
		}
		return "", fmt.Errorf("authentication failed (HTTP %d): %s", resp.StatusCode, detail)
	}

	var parsed tokenRespBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}
	expiresIn := parsed.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	a.token = parsed.AccessToken
	a.expiresAt = time.Now().Add(time.Duration(expiresIn)*time.Second - tokenSkew)
	return a.token, nil
}
