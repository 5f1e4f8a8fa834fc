package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func writeClientCredentials(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	path := filepath.Join(dir, "credentials.json")
	content := fmt.Sprintf(`{"installed": {
		"client_id": "client-id",
		"client_secret": "client-secret",
		"auth_uri": "https://accounts.example.com/auth",
		"token_uri": %q,
		"redirect_uris": ["http://localhost"]
	}}`, tokenURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func writeToken(t *testing.T, path string, token *oauth2.Token) {
	t.Helper()
	data, err := json.Marshal(token)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func readToken(t *testing.T, path string) *oauth2.Token {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var token oauth2.Token
	require.NoError(t, json.Unmarshal(data, &token))
	return &token
}

func TestFileCredentialProvider_CachedToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")
	writeToken(t, tokenFile, &oauth2.Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)})

	provider := &FileCredentialProvider{
		CredentialsFile: writeClientCredentials(t, dir, "https://oauth.example.com/token"),
		TokenFile:       tokenFile,
		Authorize: func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
			t.Fatal("authorize must not run with a valid cached token")
			return nil, nil
		},
	}

	ts, err := provider.TokenSource(context.Background())
	require.NoError(t, err)
	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "cached", token.AccessToken)
}

func TestFileCredentialProvider_RefreshesExpiredToken(t *testing.T) {
	var refreshes int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshes++
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-me", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "refreshed", "token_type": "Bearer", "expires_in": 3600}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")
	writeToken(t, tokenFile, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-me",
		Expiry:       time.Now().Add(-time.Hour),
	})

	provider := &FileCredentialProvider{
		CredentialsFile: writeClientCredentials(t, dir, server.URL),
		TokenFile:       tokenFile,
	}

	ts, err := provider.TokenSource(context.Background())
	require.NoError(t, err)
	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "refreshed", token.AccessToken)
	assert.Equal(t, 1, refreshes)

	saved := readToken(t, tokenFile)
	assert.Equal(t, "refreshed", saved.AccessToken)
	assert.Equal(t, "refresh-me", saved.RefreshToken)
}

func TestFileCredentialProvider_AuthorizesWithoutToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "nested", "token.json")

	var gotScopes []string
	provider := &FileCredentialProvider{
		CredentialsFile: writeClientCredentials(t, dir, "https://oauth.example.com/token"),
		TokenFile:       tokenFile,
		Authorize: func(_ context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
			gotScopes = cfg.Scopes
			return &oauth2.Token{AccessToken: "granted", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}, nil
		},
	}

	ts, err := provider.TokenSource(context.Background())
	require.NoError(t, err)
	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "granted", token.AccessToken)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/documents.readonly"}, gotScopes)
	assert.Equal(t, "granted", readToken(t, tokenFile).AccessToken)
}

func TestFileCredentialProvider_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing credentials file", func(t *testing.T) {
		provider := &FileCredentialProvider{CredentialsFile: filepath.Join(dir, "absent.json")}
		_, err := provider.TokenSource(context.Background())
		var credErr *CredentialsError
		assert.ErrorAs(t, err, &credErr)
	})

	t.Run("no token and no authorize", func(t *testing.T) {
		provider := &FileCredentialProvider{
			CredentialsFile: writeClientCredentials(t, dir, "https://oauth.example.com/token"),
			TokenFile:       filepath.Join(dir, "missing-token.json"),
		}
		_, err := provider.TokenSource(context.Background())
		assert.ErrorContains(t, err, "no cached token")
	})

	t.Run("authorize failure", func(t *testing.T) {
		provider := &FileCredentialProvider{
			CredentialsFile: writeClientCredentials(t, dir, "https://oauth.example.com/token"),
			TokenFile:       filepath.Join(dir, "other-token.json"),
			Authorize: func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
				return nil, errors.New("user declined")
			},
		}
		_, err := provider.TokenSource(context.Background())
		assert.ErrorContains(t, err, "user declined")
	})
}

func TestWaitForCode(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listener, err := newLocalListener()
	require.NoError(t, err)
	addr := listener.Addr().String()

	done := make(chan struct{})
	var code string
	var waitErr error
	go func() {
		defer close(done)
		code, waitErr = waitForCode(ctx, listener, "expected-state")
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/?state=expected-state&code=the-code", addr))
	require.NoError(t, err)
	_ = resp.Body.Close()

	<-done
	require.NoError(t, waitErr)
	assert.Equal(t, "the-code", code)
}

func TestWaitForCode_StateMismatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listener, err := newLocalListener()
	require.NoError(t, err)
	addr := listener.Addr().String()

	done := make(chan error, 1)
	go func() {
		_, err := waitForCode(ctx, listener, "expected-state")
		done <- err
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/?state=forged&code=x", addr))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	assert.ErrorContains(t, <-done, "invalid state")
}
