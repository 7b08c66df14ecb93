package gcal

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultTokenURL = "https://oauth2.googleapis.com/token"

// Token mirrors the token.json layout written by Google's OAuth tooling
type Token struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	TokenURI     string `json:"token_uri,omitempty"`
	Expiry       string `json:"expiry,omitempty"` // RFC3339
}

// LoadToken reads a token.json file
func LoadToken(path string) (*Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}

	return &token, nil
}

// SaveToken writes the token back to disk, keeping credentials out of
// group/world-readable files
func SaveToken(token *Token, path string) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}

// WriteTokenFromEnv decodes a base64-encoded token.json payload (the
// GOOGLE_TOKEN variable in CI environments) and writes it to path
func WriteTokenFromEnv(encoded, path string) error {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decoding GOOGLE_TOKEN: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}

// Expired reports whether the access token needs a refresh. An unparseable
// expiry counts as expired so a refresh is attempted rather than a doomed
// API call; a token with no expiry at all is taken at face value.
func (t *Token) Expired() bool {
	if t.AccessToken == "" {
		return true
	}
	if t.Expiry == "" {
		return false
	}
	expiry, err := time.Parse(time.RFC3339, t.Expiry)
	if err != nil {
		return true
	}
	return time.Now().After(expiry.Add(-time.Minute))
}

// Refresh exchanges the refresh token for a fresh access token and updates
// the token in place
func (t *Token) Refresh(httpClient *http.Client) error {
	if t.RefreshToken == "" {
		return fmt.Errorf("no refresh token available")
	}

	tokenURL := t.TokenURI
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	form := url.Values{}
	form.Set("client_id", t.ClientID)
	form.Set("client_secret", t.ClientSecret)
	form.Set("refresh_token", t.RefreshToken)
	form.Set("grant_type", "refresh_token")

	resp, err := httpClient.Post(tokenURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("refreshing token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Don't include response body in error to prevent credential leakage
		return fmt.Errorf("token refresh failed (status %d)", resp.StatusCode)
	}

	var refreshed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		return fmt.Errorf("decoding refresh response: %w", err)
	}

	t.AccessToken = refreshed.AccessToken
	if refreshed.ExpiresIn > 0 {
		t.Expiry = time.Now().Add(time.Duration(refreshed.ExpiresIn) * time.Second).Format(time.RFC3339)
	}

	return nil
}
