package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrStateMismatch means the consent callback did not carry our state value
var ErrStateMismatch = errors.New("oauth callback state mismatch")

type callbackResult struct {
	code string
	err  error
}

// Flow runs the interactive consent flow: it prints the consent URL, waits
// for the loopback redirect and stores the exchanged token.
type Flow struct {
	config *oauth2.Config
	store  *TokenStore
	addr   string
	logger *zap.Logger

	// Prompt presents the consent URL to the user
	Prompt func(authURL string) error
}

// NewFlow creates a consent flow listening on addr for the redirect
func NewFlow(config *oauth2.Config, store *TokenStore, addr string, logger *zap.Logger) *Flow {
	return &Flow{
		config: config,
		store:  store,
		addr:   addr,
		logger: logger,
		Prompt: func(authURL string) error {
			_, err := fmt.Fprintf(os.Stderr, "Open this URL in your browser to authorize access:\n\n%s\n\n", authURL)
			return err
		},
	}
}

// Run completes the flow and returns the saved token
func (f *Flow) Run(ctx context.Context) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", f.addr)
	if err != nil {
		return nil, fmt.Errorf("listen for oauth redirect on %s: %w", f.addr, err)
	}

	config := *f.config
	config.RedirectURL = "http://" + listener.Addr().String() + "/"

	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	server := &http.Server{
		Handler:           f.createRouter(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("OAuth redirect listener failed", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	f.logger.Info("Waiting for Google sign-in", zap.String("redirect_url", config.RedirectURL))
	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if err := f.Prompt(authURL); err != nil {
		return nil, fmt.Errorf("present consent url: %w", err)
	}

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if result.err != nil {
		return nil, result.err
	}

	token, err := config.Exchange(ctx, result.code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := f.store.Save(token); err != nil {
		return nil, err
	}

	f.logger.Info("Authentication successful", zap.Time("expiry", token.Expiry))
	return token, nil
}

func (f *Flow) createRouter(state string, results chan<- callbackResult) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var result callbackResult
		switch {
		case query.Get("state") != state:
			result.err = ErrStateMismatch
		case query.Get("error") != "":
			result.err = fmt.Errorf("authorization denied: %s", query.Get("error"))
		case query.Get("code") == "":
			result.err = errors.New("authorization code missing from callback")
		default:
			result.code = query.Get("code")
		}

		// Only the first callback is delivered
		select {
		case results <- result:
		default:
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if result.err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprintf(w, "Authorization failed: %v\n", result.err)
			return
		}
		_, _ = fmt.Fprintln(w, "Authorization complete. You can close this window.")
	}).Methods(http.MethodGet)

	return router
}
