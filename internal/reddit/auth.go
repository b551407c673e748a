package reddit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/lepinkainen/steam-herald/internal/config"
	"golang.org/x/oauth2"
)

const authPort = "8080"

// TokenSourceClient returns an HTTP client whose transport refreshes the
// access token transparently from the stored refresh token. The publisher
// wraps it with retry and rate limiting.
func TokenSourceClient(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	if cfg.Reddit.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token configured: run the auth command first")
	}

	token := &oauth2.Token{
		RefreshToken: cfg.Reddit.RefreshToken,
		AccessToken:  cfg.Reddit.AccessToken,
		Expiry:       cfg.Reddit.ExpiresAt,
	}
	return oauth2.NewClient(ctx, oauthConfig(cfg).TokenSource(ctx, token)), nil
}

// AuthenticateUser starts a local web server, opens the browser for
// authentication, and retrieves the access and refresh tokens. The refresh
// token is persisted back into the config file.
func AuthenticateUser(cfg *config.Config, configPath string) (*oauth2.Token, error) {
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	oc := oauthConfig(cfg)
	authCodeChan := make(chan string)
	var serverWg sync.WaitGroup

	serverWg.Add(1)
	go func() {
		defer serverWg.Done()
		mux := http.NewServeMux()
		mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
			callbackHandler(w, r, authCodeChan)
		})
		slog.Info("Starting local HTTP server for OAuth2 callback", "port", authPort)
		server := &http.Server{Addr: ":" + authPort, Handler: mux}

		go func() {
			<-serverCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("Error shutting down HTTP server", "error", err)
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	authURL := oc.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("duration", "permanent"))

	slog.Info("Opening browser for Reddit authentication", "url", authURL)
	if err := openBrowser(authURL); err != nil {
		slog.Warn("Failed to open browser, open the URL manually", "url", authURL, "error", err)
	}

	authCode := <-authCodeChan
	if authCode == "" {
		return nil, fmt.Errorf("authentication failed: no authorization code received")
	}

	token, err := exchangeAuthCode(oc, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	cfg.Reddit.AccessToken = token.AccessToken
	cfg.Reddit.RefreshToken = token.RefreshToken
	cfg.Reddit.ExpiresAt = token.Expiry
	if err := config.SaveConfig(cfg, configPath); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	slog.Info("Authentication successful, tokens saved")

	serverCancel()
	serverWg.Wait()
	return token, nil
}

// exchangeAuthCode exchanges the authorization code for tokens, backing off
// when Reddit rate-limits the token endpoint.
func exchangeAuthCode(oc *oauth2.Config, authCode string) (*oauth2.Token, error) {
	const maxRetries = 5
	backoff := 1 * time.Second

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		token, err := oc.Exchange(ctx, authCode)
		cancel()
		if err == nil {
			return token, nil
		}

		if oe, ok := err.(*oauth2.RetrieveError); ok && oe.Response.StatusCode == http.StatusTooManyRequests {
			slog.Warn("Rate limited, retrying", "backoff", backoff)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		return nil, fmt.Errorf("failed to exchange authorization code for token after %d attempts: %w", i+1, err)
	}

	return nil, fmt.Errorf("failed to exchange authorization code for token after %d retries", maxRetries)
}

// callbackHandler handles the redirect from Reddit after user authentication.
func callbackHandler(w http.ResponseWriter, r *http.Request, authCodeChan chan<- string) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")
	errorParam := query.Get("error")

	if errorParam != "" {
		slog.Error("OAuth2 callback error", "error", errorParam)
		fmt.Fprintf(w, "Authentication failed: %s. Please check the console for details.", errorParam)
		authCodeChan <- ""
		return
	}

	if state != "state" {
		slog.Error("State mismatch", "expected", "state", "got", state)
		fmt.Fprint(w, "Authentication failed: State mismatch.")
		authCodeChan <- ""
		return
	}

	if code == "" {
		slog.Error("No authorization code received in callback")
		fmt.Fprint(w, "Authentication failed: No code received.")
		authCodeChan <- ""
		return
	}

	slog.Info("Authorization code received successfully")
	fmt.Fprint(w, "Authentication successful! You can close this browser tab.")
	authCodeChan <- code
}

// openBrowser opens the given URL in the default web browser.
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default:
		cmd = "xdg-open"
	}
	args = append(args, url)
	return exec.Command(cmd, args...).Start()
}

func oauthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		RedirectURL:  cfg.Reddit.RedirectURI,
		Scopes:       []string{"identity", "submit", "read"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://www.reddit.com/api/v1/authorize",
			TokenURL: "https://www.reddit.com/api/v1/access_token",
		},
	}
}
