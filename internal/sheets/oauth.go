package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// OAuth2Config holds the installed-app credentials and where the token lives.
type OAuth2Config struct {
	// Out receives the authorization URL. Nil logs it instead.
	Out          io.Writer
	ClientID     string
	ClientSecret string
	TokenFile    string
}

const (
	callbackAddr = "localhost:8080"
	authTimeout  = 5 * time.Minute
)

var errStateMismatch = errors.New("oauth2 state mismatch")

func oauthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://" + callbackAddr + "/callback",
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// callbackHandler accepts one redirect carrying state and hands its code to
// codes. Anything else goes to errs.
func callbackHandler(state string, codes chan<- string, errs chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		fail := func(err error) {
			select {
			case errs <- err:
			default:
			}
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprintf(w, "<html><body><h1>kroner: authorization failed</h1><p>%s</p></body></html>", err)
		}

		switch {
		case q.Get("state") != state:
			fail(errStateMismatch)
		case q.Get("error") != "":
			fail(fmt.Errorf("authorization denied: %s", q.Get("error")))
		case q.Get("code") == "":
			fail(errors.New("no authorization code received"))
		default:
			select {
			case codes <- q.Get("code"):
			default:
			}
			_, _ = fmt.Fprint(w, "<html><body><h1>kroner is connected to Google Sheets</h1><p>You can close this window.</p></body></html>")
		}
	})
	return mux
}

// AuthenticateOAuth2Interactive runs the installed-app flow: it serves the
// redirect on localhost, waits for the user to approve, exchanges the code
// and stores the token in config.TokenFile.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	oc := oauthConfig(config.ClientID, config.ClientSecret)
	state := uuid.NewString()

	codes := make(chan string, 1)
	errs := make(chan error, 1)

	server := &http.Server{
		Addr:              callbackAddr,
		Handler:           callbackHandler(state, codes, errs),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			select {
			case errs <- fmt.Errorf("failed to start callback server: %w", err):
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Error shutting down callback server", "error", err)
		}
	}()

	authURL := oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if config.Out != nil {
		_, _ = fmt.Fprintf(config.Out, "Open this URL to authorize kroner:\n\n  %s\n\n", authURL)
	} else {
		slog.Info("Please visit this URL to authenticate", "url", authURL)
	}

	var code string
	select {
	case code = <-codes:
		slog.Debug("Received authorization code")
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("no authorization received within %s", authTimeout)
	}

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := saveToken(config.TokenFile, token); err != nil {
			slog.Warn("Failed to save token to file", "error", err, "file", config.TokenFile)
		} else {
			slog.Info("Token saved", "file", config.TokenFile)
		}
	}

	return token, nil
}

// LoadToken reads a token written by the interactive flow.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token %s: %w", tokenFile, err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// RefreshTokenIfNeeded renews an expired token and rewrites the token file.
func RefreshTokenIfNeeded(ctx context.Context, config OAuth2Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	slog.Info("Token expired, refreshing")

	fresh, err := oauthConfig(config.ClientID, config.ClientSecret).TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if config.TokenFile != "" {
		if err := saveToken(config.TokenFile, fresh); err != nil {
			slog.Warn("Failed to save refreshed token", "error", err)
		}
	}

	return fresh, nil
}

// GetOrCreateToken uses the stored token when there is one and falls back
// to the interactive flow.
func GetOrCreateToken(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	if config.TokenFile != "" {
		token, err := LoadToken(config.TokenFile)
		if err == nil {
			slog.Debug("Loaded existing token from file")
			return RefreshTokenIfNeeded(ctx, config, token)
		}
		slog.Info("No stored Sheets token, starting OAuth2 flow")
	}

	return AuthenticateOAuth2Interactive(ctx, config)
}
