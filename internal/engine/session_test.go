package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func writeTestCredential(t *testing.T, path string, cred Credential) {
	t.Helper()
	data, err := json.Marshal(cred)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
}

func fakeTokenEndpoint(t *testing.T, hits *atomic.Int64, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTokenFreshCredentialNoRefresh(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	writeTestCredential(t, tokenPath, Credential{
		AccessToken:  "fresh",
		RefreshToken: "r1",
		Expiry:       time.Now().Add(time.Hour),
	})

	var hits atomic.Int64
	srv := fakeTokenEndpoint(t, &hits, `{}`, http.StatusOK)

	s, err := NewSessionManager(SessionConfig{
		TokenPath: tokenPath,
		OAuth:     &oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: srv.URL}},
	})
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	tok, err := s.Token(t.Context())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "fresh" {
		t.Errorf("token = %q, want stored token", tok)
	}
	if hits.Load() != 0 {
		t.Errorf("fresh credential triggered %d refresh calls", hits.Load())
	}
}

func TestTokenConcurrentSingleRefresh(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	writeTestCredential(t, tokenPath, Credential{
		AccessToken:  "stale",
		RefreshToken: "r1",
		Expiry:       time.Now().Add(-time.Hour),
	})

	var hits atomic.Int64
	srv := fakeTokenEndpoint(t, &hits,
		`{"access_token":"refreshed","token_type":"Bearer","expires_in":3600}`, http.StatusOK)

	s, err := NewSessionManager(SessionConfig{
		TokenPath: tokenPath,
		OAuth:     &oauth2.Config{ClientID: "c", Endpoint: oauth2.Endpoint{TokenURL: srv.URL}},
	})
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	const callers = 20
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = s.Token(t.Context())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if tokens[i] != "refreshed" {
			t.Errorf("caller %d got %q, want the refreshed token", i, tokens[i])
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("refresh round-trips = %d, want exactly 1 for %d concurrent callers", got, callers)
	}
}

func TestTokenRefreshSurvivesCallerCancel(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	writeTestCredential(t, tokenPath, Credential{
		AccessToken:  "stale",
		RefreshToken: "r1",
		Expiry:       time.Now().Add(-time.Hour),
	})

	var hits atomic.Int64
	srv := fakeTokenEndpoint(t, &hits,
		`{"access_token":"refreshed","token_type":"Bearer","expires_in":3600}`, http.StatusOK)

	s, err := NewSessionManager(SessionConfig{
		TokenPath: tokenPath,
		OAuth:     &oauth2.Config{ClientID: "c", Endpoint: oauth2.Endpoint{TokenURL: srv.URL}},
	})
	if err != nil {
		t.Fatal(err)
	}

	// The refresh is shared state: one caller's dead context must not kill
	// the round-trip for everyone queued behind it.
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	tok, err := s.Token(ctx)
	if err != nil {
		t.Fatalf("Token with cancelled caller context: %v", err)
	}
	if tok != "refreshed" {
		t.Errorf("token = %q, want the refreshed token", tok)
	}
	if hits.Load() != 1 {
		t.Errorf("refresh round-trips = %d, want 1", hits.Load())
	}
}

func TestTokenRefreshKeepsOldRefreshToken(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	writeTestCredential(t, tokenPath, Credential{
		AccessToken:  "stale",
		RefreshToken: "keep-me",
		Expiry:       time.Now().Add(-time.Hour),
	})

	var hits atomic.Int64
	// Google often omits refresh_token in refresh responses.
	srv := fakeTokenEndpoint(t, &hits,
		`{"access_token":"refreshed","token_type":"Bearer","expires_in":3600}`, http.StatusOK)

	s, err := NewSessionManager(SessionConfig{
		TokenPath: tokenPath,
		OAuth:     &oauth2.Config{ClientID: "c", Endpoint: oauth2.Endpoint{TokenURL: srv.URL}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Token(t.Context()); err != nil {
		t.Fatalf("Token: %v", err)
	}

	cred, err := loadCredential(tokenPath)
	if err != nil {
		t.Fatal(err)
	}
	if cred.RefreshToken != "keep-me" {
		t.Errorf("persisted refresh token %q, want the original preserved", cred.RefreshToken)
	}
	if cred.AccessToken != "refreshed" {
		t.Errorf("persisted access token %q, want the refreshed one", cred.AccessToken)
	}
}

func TestTokenInvalidGrantClearsCredential(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	writeTestCredential(t, tokenPath, Credential{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		Expiry:       time.Now().Add(-time.Hour),
	})

	var hits atomic.Int64
	srv := fakeTokenEndpoint(t, &hits, `{"error":"invalid_grant"}`, http.StatusBadRequest)

	s, err := NewSessionManager(SessionConfig{
		TokenPath: tokenPath,
		OAuth:     &oauth2.Config{ClientID: "c", Endpoint: oauth2.Endpoint{TokenURL: srv.URL}},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Token(t.Context())
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("invalid_grant should surface ErrAuthRequired, got %v", err)
	}

	// The credential is gone; the next call fails without a network round-trip.
	before := hits.Load()
	_, err = s.Token(t.Context())
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("second Token after invalid_grant: %v", err)
	}
	if hits.Load() != before {
		t.Error("cleared credential still triggered a refresh round-trip")
	}
	if st := s.Status(); st.Authenticated {
		t.Error("status reports authenticated after invalid_grant")
	}
}

func TestTokenNoCredential(t *testing.T) {
	s, err := NewSessionManager(SessionConfig{
		TokenPath: filepath.Join(t.TempDir(), "token.json"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Token(t.Context()); !errors.Is(err, ErrAuthRequired) {
		t.Errorf("missing credential should surface ErrAuthRequired, got %v", err)
	}
}

func TestSaveCredentialAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "token.json")

	cred := &Credential{AccessToken: "a", RefreshToken: "r", Expiry: time.Now()}
	if err := saveCredential(path, cred); err != nil {
		t.Fatalf("saveCredential: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("token file mode = %o, want 0600", perm)
		}
	}

	// No temp files may survive.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("token dir has %d entries, want only the token file", len(entries))
	}

	got, err := loadCredential(path)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.RefreshToken != "r" {
		t.Errorf("round-trip credential = %+v", got)
	}
}

func TestLoadCredentialMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()

	cred, err := loadCredential(filepath.Join(dir, "absent.json"))
	if err != nil || cred != nil {
		t.Errorf("missing file: cred %v err %v, want nil/nil", cred, err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadCredential(bad); err == nil {
		t.Error("corrupt file should return an error")
	}
}

func TestSessionStatus(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token.json")
	secretPath := filepath.Join(dir, "client_secret.json")

	s, err := NewSessionManager(SessionConfig{TokenPath: tokenPath, ClientSecretPath: secretPath})
	if err != nil {
		t.Fatal(err)
	}
	st := s.Status()
	if st.Authenticated || st.ClientSecretExists {
		t.Errorf("empty state status = %+v", st)
	}

	writeTestCredential(t, tokenPath, Credential{
		AccessToken:  "a",
		RefreshToken: "r",
		Expiry:       time.Now().Add(time.Hour),
		Scopes:       Scopes,
	})
	s, err = NewSessionManager(SessionConfig{TokenPath: tokenPath, ClientSecretPath: secretPath})
	if err != nil {
		t.Fatal(err)
	}
	st = s.Status()
	if !st.Authenticated || !st.HasRefreshToken {
		t.Errorf("authenticated status = %+v", st)
	}
	if len(st.Scopes) != len(Scopes) {
		t.Errorf("scopes = %v", st.Scopes)
	}
}
