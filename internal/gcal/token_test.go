package gcal

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadToken_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	original := &Token{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURI:     "https://oauth2.googleapis.com/token",
		Expiry:       "2026-09-01T00:00:00Z",
	}

	if err := SaveToken(original, path); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	loaded, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}

	if *loaded != *original {
		t.Errorf("loaded token = %+v, want %+v", loaded, original)
	}
}

func TestLoadToken_MissingFile(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("LoadToken() error = nil, want read error")
	}
}

func TestWriteTokenFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	payload := `{"token":"access-123","refresh_token":"refresh-456"}`
	encoded := base64.StdEncoding.EncodeToString([]byte(payload))

	if err := WriteTokenFromEnv(encoded, path); err != nil {
		t.Fatalf("WriteTokenFromEnv() error = %v", err)
	}

	token, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if token.AccessToken != "access-123" {
		t.Errorf("AccessToken = %q", token.AccessToken)
	}
	if token.RefreshToken != "refresh-456" {
		t.Errorf("RefreshToken = %q", token.RefreshToken)
	}
}

func TestWriteTokenFromEnv_InvalidBase64(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := WriteTokenFromEnv("not base64!!!", path); err == nil {
		t.Fatal("WriteTokenFromEnv() error = nil, want decode error")
	}
}

func TestTokenExpired(t *testing.T) {
	tests := []struct {
		name  string
		token Token
		want  bool
	}{
		{
			name:  "missing access token",
			token: Token{},
			want:  true,
		},
		{
			name:  "no expiry recorded",
			token: Token{AccessToken: "access-123"},
			want:  false,
		},
		{
			name:  "unparseable expiry",
			token: Token{AccessToken: "access-123", Expiry: "yesterday"},
			want:  true,
		},
		{
			name: "expiry in the past",
			token: Token{
				AccessToken: "access-123",
				Expiry:      time.Now().Add(-time.Hour).Format(time.RFC3339),
			},
			want: true,
		},
		{
			name: "expiry inside the refresh margin",
			token: Token{
				AccessToken: "access-123",
				Expiry:      time.Now().Add(30 * time.Second).Format(time.RFC3339),
			},
			want: true,
		},
		{
			name: "expiry well in the future",
			token: Token{
				AccessToken: "access-123",
				Expiry:      time.Now().Add(time.Hour).Format(time.RFC3339),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.Expired(); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenRefresh(t *testing.T) {
	var form map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		form = map[string]string{
			"client_id":     r.PostFormValue("client_id"),
			"client_secret": r.PostFormValue("client_secret"),
			"refresh_token": r.PostFormValue("refresh_token"),
			"grant_type":    r.PostFormValue("grant_type"),
		}
		fmt.Fprint(w, `{"access_token":"fresh-789","expires_in":3600}`)
	}))
	defer server.Close()

	token := &Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-456",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURI:     server.URL,
	}

	if err := token.Refresh(http.DefaultClient); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if token.AccessToken != "fresh-789" {
		t.Errorf("AccessToken = %q, want %q", token.AccessToken, "fresh-789")
	}
	if token.Expiry == "" {
		t.Error("Expiry not updated from expires_in")
	}
	if form["grant_type"] != "refresh_token" {
		t.Errorf("grant_type = %q", form["grant_type"])
	}
	if form["refresh_token"] != "refresh-456" {
		t.Errorf("refresh_token = %q", form["refresh_token"])
	}
}

func TestTokenRefresh_NoRefreshToken(t *testing.T) {
	token := &Token{AccessToken: "stale"}
	if err := token.Refresh(http.DefaultClient); err == nil {
		t.Fatal("Refresh() error = nil, want missing refresh token error")
	}
}

func TestTokenRefresh_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	token := &Token{
		RefreshToken: "refresh-456",
		TokenURI:     server.URL,
	}

	if err := token.Refresh(http.DefaultClient); err == nil {
		t.Fatal("Refresh() error = nil, want status error")
	}
}
