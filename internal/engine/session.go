package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"
)

// Scopes requested during the consent flow, covering Data, Analytics and
// Reporting API access.
var Scopes = []string{
	"https://www.googleapis.com/auth/youtube.readonly",
	"https://www.googleapis.com/auth/youtube",
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/yt-analytics.readonly",
	"https://www.googleapis.com/auth/yt-analytics-monetary.readonly",
}

// Credential is the persisted OAuth state — the single source of truth
// across process restarts. Mutated only by the SessionManager.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
	Scopes       []string  `json:"scopes"`
}

// SessionConfig configures a SessionManager.
type SessionConfig struct {
	ClientSecretPath string
	TokenPath        string
	APIKey           string
	HTTPClient       *http.Client
	Margin           time.Duration    // min validity handed to callers; default 60s
	OAuth            *oauth2.Config   // test override; nil = load client_secret.json
	Now              func() time.Time // nil = time.Now
}

// SessionManager owns the one persisted credential. It hands out access
// tokens that stay valid for at least Margin, refreshing silently when
// needed. A failed refresh surfaces ErrAuthRequired rather than starting an
// interactive flow on its own.
type SessionManager struct {
	mu         sync.Mutex
	cred       *Credential
	oauth      *oauth2.Config
	secretPath string
	tokenPath  string
	apiKey     string
	httpClient *http.Client
	margin     time.Duration
	group      singleflight.Group
	now        func() time.Time
}

// AuthStatus reports the credential state for the auth status tool.
type AuthStatus struct {
	Authenticated      bool     `json:"authenticated"`
	Expired            bool     `json:"expired,omitempty"`
	HasRefreshToken    bool     `json:"has_refresh_token,omitempty"`
	Scopes             []string `json:"scopes,omitempty"`
	TokenPath          string   `json:"token_path"`
	ClientSecretExists bool     `json:"client_secret_exists"`
}

// NewSessionManager loads any persisted credential and the OAuth client
// configuration. A missing client_secret.json is not an error until an
// operation actually needs it.
func NewSessionManager(c SessionConfig) (*SessionManager, error) {
	s := &SessionManager{
		oauth:      c.OAuth,
		secretPath: c.ClientSecretPath,
		tokenPath:  c.TokenPath,
		apiKey:     c.APIKey,
		httpClient: c.HTTPClient,
		margin:     c.Margin,
		now:        c.Now,
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if s.margin <= 0 {
		s.margin = 60 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}

	if cred, err := loadCredential(s.tokenPath); err != nil {
		slog.Warn("auth: stored credential unreadable, ignoring", slog.Any("error", err))
	} else if cred != nil {
		s.cred = cred
	}

	if s.oauth == nil && s.secretPath != "" {
		if data, err := os.ReadFile(s.secretPath); err == nil {
			oc, err := google.ConfigFromJSON(data, Scopes...)
			if err != nil {
				return nil, fmt.Errorf("auth: parse %s: %w", s.secretPath, err)
			}
			s.oauth = oc
		}
	}
	return s, nil
}

// APIKey returns the configured public-data API key, if any.
func (s *SessionManager) APIKey() string { return s.apiKey }

// Token returns an access token valid for at least the safety margin,
// refreshing silently when the stored one is expired or close to it.
// Concurrent callers during a refresh all receive the single refreshed
// token; at most one refresh round-trip is in flight at a time.
func (s *SessionManager) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	cred := s.cred
	if cred == nil {
		s.mu.Unlock()
		return "", &AuthError{Reason: "no stored credential, run youtube_auth"}
	}
	if cred.AccessToken != "" && s.now().Add(s.margin).Before(cred.Expiry) {
		tok := cred.AccessToken
		s.mu.Unlock()
		return tok, nil
	}
	if cred.RefreshToken == "" {
		s.mu.Unlock()
		return "", &AuthError{Reason: "access token expired and no refresh token stored"}
	}
	s.mu.Unlock()

	// The refresh is shared by every queued caller, so it must not die with
	// the first caller's context.
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(*Credential).AccessToken, nil
}

// refresh performs one silent refresh round-trip and persists the result.
func (s *SessionManager) refresh(ctx context.Context) (*Credential, error) {
	s.mu.Lock()
	cred := s.cred
	// A previous flight may have refreshed while we queued.
	if cred != nil && cred.AccessToken != "" && s.now().Add(s.margin).Before(cred.Expiry) {
		s.mu.Unlock()
		return cred, nil
	}
	if cred == nil || cred.RefreshToken == "" {
		s.mu.Unlock()
		return nil, &AuthError{Reason: "no refresh token"}
	}
	oc := s.oauth
	refreshToken := cred.RefreshToken
	s.mu.Unlock()

	if oc == nil {
		return nil, &AuthError{Reason: "client_secret.json not found at " + s.secretPath}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	IncrTokenRefreshes()
	tok, err := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorCode == "invalid_grant" {
			// Revoked or expired grant: back to unauthenticated. Re-auth is
			// an explicit action, never started from here.
			s.mu.Lock()
			s.cred = nil
			s.mu.Unlock()
			slog.Warn("auth: refresh grant rejected, re-authentication required")
			return nil, &AuthError{Reason: "refresh token rejected (invalid_grant)", Err: err}
		}
		return nil, &AuthError{Reason: "token refresh failed", Err: err}
	}

	next := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		Scopes:       Scopes,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = refreshToken
	}

	s.mu.Lock()
	s.cred = next
	s.mu.Unlock()
	if err := saveCredential(s.tokenPath, next); err != nil {
		slog.Warn("auth: persist refreshed credential failed", slog.Any("error", err))
	}
	slog.Info("auth: access token refreshed", slog.Time("expiry", next.Expiry))
	return next, nil
}

// InteractiveAuth runs the browser consent flow: a loopback callback server
// on an ephemeral port, the consent URL logged for the operator, then code
// exchange. Blocks until consent lands, ctx is done, or the flow fails.
func (s *SessionManager) InteractiveAuth(ctx context.Context) (*Credential, error) {
	s.mu.Lock()
	oc := s.oauth
	s.mu.Unlock()
	if oc == nil {
		return nil, &AuthError{Reason: fmt.Sprintf(
			"client_secret.json not found at %s; download it from Google Cloud Console (APIs & Services > Credentials)",
			s.secretPath)}
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("auth: listen for callback: %w", err)
	}
	defer ln.Close()

	flowCfg := *oc
	flowCfg.RedirectURL = fmt.Sprintf("http://%s/oauth/callback", ln.Addr().String())
	state := uuid.New().String()
	authURL := flowCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- errors.New("auth: oauth state mismatch")
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "consent denied", http.StatusBadRequest)
			errCh <- fmt.Errorf("auth: consent denied: %s", e)
			return
		}
		fmt.Fprint(w, "Authentication complete. You can close this window.")
		codeCh <- q.Get("code")
	})
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Shutdown(context.Background())

	slog.Info("auth: waiting for consent", slog.String("url", authURL))

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("auth: consent flow abandoned: %w", ctx.Err())
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := flowCfg.Exchange(ctx, code)
	if err != nil {
		return nil, &AuthError{Reason: "code exchange failed", Err: err}
	}
	if tok.RefreshToken == "" {
		return nil, &AuthError{Reason: "no refresh_token granted (revoke prior access and retry)"}
	}

	cred := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		Scopes:       Scopes,
	}
	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()
	if err := saveCredential(s.tokenPath, cred); err != nil {
		return nil, fmt.Errorf("auth: persist credential: %w", err)
	}
	slog.Info("auth: interactive flow complete", slog.Time("expiry", cred.Expiry))
	return cred, nil
}

// Status reports the current credential state.
func (s *SessionManager) Status() AuthStatus {
	s.mu.Lock()
	cred := s.cred
	s.mu.Unlock()

	_, secretErr := os.Stat(s.secretPath)
	st := AuthStatus{
		TokenPath:          s.tokenPath,
		ClientSecretExists: s.secretPath != "" && secretErr == nil,
	}
	if cred == nil {
		return st
	}
	st.HasRefreshToken = cred.RefreshToken != ""
	st.Scopes = cred.Scopes
	if cred.AccessToken != "" && s.now().Before(cred.Expiry) {
		st.Authenticated = true
	} else {
		st.Expired = true
	}
	return st
}

func loadCredential(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cred.RefreshToken == "" && cred.AccessToken == "" {
		return nil, nil
	}
	return &cred, nil
}

// saveCredential writes the token file atomically (temp file + rename) so a
// crash mid-write never corrupts the stored credential. 0600: token grants
// full channel access.
func saveCredential(path string, cred *Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".token-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
