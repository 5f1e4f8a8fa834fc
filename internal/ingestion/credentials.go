package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
)

// CredentialProvider supplies an OAuth token source for the Docs API.
type CredentialProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// AuthorizeFunc runs an interactive consent flow and returns a fresh token.
type AuthorizeFunc func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)

// FileCredentialProvider reads OAuth client credentials from CredentialsFile
// and caches the user token in TokenFile.
type FileCredentialProvider struct {
	CredentialsFile string
	TokenFile       string
	// Authorize runs when no usable cached token exists. When nil, a missing
	// token is an error.
	Authorize AuthorizeFunc
}

// TokenSource loads the cached token, refreshing it when expired or running
// Authorize when none is usable. Any new token is written back to TokenFile.
func (p *FileCredentialProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	raw, err := os.ReadFile(p.CredentialsFile)
	if err != nil {
		return nil, &CredentialsError{Message: "failed to read credentials file " + p.CredentialsFile, Cause: err}
	}
	cfg, err := google.ConfigFromJSON(raw, docs.DocumentsReadonlyScope)
	if err != nil {
		return nil, &CredentialsError{Message: "failed to parse credentials file", Cause: err}
	}

	token, err := loadToken(p.TokenFile)
	if err != nil {
		return nil, err
	}

	var fresh *oauth2.Token
	switch {
	case token != nil && token.Valid():
		log.Debug().Str("token_file", p.TokenFile).Msg("using cached token")
	case token != nil && token.RefreshToken != "":
		log.Debug().Str("token_file", p.TokenFile).Msg("refreshing expired token")
		fresh, err = cfg.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, &CredentialsError{Message: "failed to refresh token", Cause: err}
		}
	default:
		if p.Authorize == nil {
			return nil, &CredentialsError{Message: "no cached token and no authorization flow configured"}
		}
		fresh, err = p.Authorize(ctx, cfg)
		if err != nil {
			return nil, &CredentialsError{Message: "authorization failed", Cause: err}
		}
	}

	if fresh != nil {
		if err := saveToken(p.TokenFile, fresh); err != nil {
			return nil, err
		}
		token = fresh
	}

	return cfg.TokenSource(ctx, token), nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &CredentialsError{Message: "failed to read token file " + path, Cause: err}
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, &CredentialsError{Message: "failed to parse token file " + path, Cause: err}
	}
	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return &CredentialsError{Message: "failed to encode token", Cause: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &CredentialsError{Message: "failed to create token directory", Cause: err}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return &CredentialsError{Message: "failed to write token file " + path, Cause: err}
	}
	return nil
}

// LoopbackAuthorizer returns an AuthorizeFunc that prints the consent URL to
// out and receives the authorization code on a local callback server bound to
// a free port.
func LoopbackAuthorizer(out io.Writer) AuthorizeFunc {
	return func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
		listener, err := newLocalListener()
		if err != nil {
			return nil, fmt.Errorf("start callback listener: %w", err)
		}

		flowCfg := *cfg
		flowCfg.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

		state := uuid.NewString()
		verifier := oauth2.GenerateVerifier()
		authURL := flowCfg.AuthCodeURL(state,
			oauth2.AccessTypeOffline,
			oauth2.S256ChallengeOption(verifier))

		_, _ = fmt.Fprintf(out, "Open this URL in your browser to authorize access:\n\n%s\n\n", authURL)

		code, err := waitForCode(ctx, listener, state)
		if err != nil {
			return nil, err
		}
		return flowCfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	}
}

func newLocalListener() (net.Listener, error) {
	return net.Listen("tcp", "127.0.0.1:0")
}

func waitForCode(ctx context.Context, listener net.Listener, expectedState string) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	report := func(err error) {
		select {
		case errChan <- err:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != expectedState:
			http.Error(w, "Invalid state", http.StatusBadRequest)
			report(fmt.Errorf("invalid state received"))
		case q.Get("error") != "":
			http.Error(w, "Authorization failed: "+q.Get("error"), http.StatusBadRequest)
			report(fmt.Errorf("authorization failed: %s", q.Get("error")))
		case q.Get("code") == "":
			http.Error(w, "No code received", http.StatusBadRequest)
			report(fmt.Errorf("no code received"))
		default:
			_, _ = w.Write([]byte("Authorization complete. You can close this window."))
			select {
			case codeChan <- q.Get("code"):
			default:
			}
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report(err)
		}
	}()
	defer func() { _ = server.Close() }()

	select {
	case code := <-codeChan:
		return code, nil
	case err := <-errChan:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
