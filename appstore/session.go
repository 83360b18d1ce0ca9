package appstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-storesync/core"
)

const (
	defaultBaseURL        = "https://api.appstoreconnect.apple.com/"
	defaultRequestTimeout = 30 * time.Second

	// A cached credential is reused while it is more than this far from
	// expiry; refresh is lazy, triggered by the next call that needs it.
	credentialRefreshLeeway = 60
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type SessionConfig struct {
	Auth       core.AppStoreConfig
	BaseURL    string
	HTTPClient HTTPDoer
	Logger     core.Logger
	// Now returns the current epoch seconds; tests override it.
	Now func() int64
}

// Session is the authenticated transport facade for App Store Connect.
// It owns the credential cache: one credential per session, superseded
// when within the refresh leeway of expiry.
type Session struct {
	auth       core.AppStoreConfig
	baseURL    string
	httpClient HTTPDoer
	logger     core.Logger
	now        func() int64

	mu         sync.Mutex
	credential *Credential
}

func NewSession(cfg SessionConfig) (*Session, error) {
	if missing := cfg.Auth.Missing(); len(missing) > 0 {
		return nil, core.NewAuthConfigMissingError("app-store", missing...)
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	_, logger := glog.Resolve("appstore", nil, cfg.Logger)
	now := cfg.Now
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	return &Session{
		auth:       cfg.Auth,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     glog.Ensure(logger),
		now:        now,
	}, nil
}

func (s *Session) Get(ctx context.Context, path string, out any) error {
	return s.request(ctx, http.MethodGet, path, nil, out)
}

func (s *Session) Post(ctx context.Context, path string, body any, out any) error {
	return s.request(ctx, http.MethodPost, path, body, out)
}

func (s *Session) Patch(ctx context.Context, path string, body any) error {
	return s.request(ctx, http.MethodPatch, path, body, nil)
}

func (s *Session) request(ctx context.Context, method string, path string, body any, out any) error {
	if s == nil {
		return fmt.Errorf("appstore: session is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	token, err := s.token()
	if err != nil {
		return err
	}

	target, err := url.Parse(s.baseURL + strings.TrimPrefix(path, "/"))
	if err != nil {
		return fmt.Errorf("appstore: parse request path %q: %w", path, err)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("appstore: marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("appstore: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("appstore: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("appstore: read response body: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		s.logger.Error("app store request failed",
			"method", method,
			"path", path,
			"status", res.StatusCode,
		)
		return &core.RequestError{
			Store:  "app-store",
			Status: res.StatusCode,
			Body:   string(payload),
		}
	}

	s.logger.Debug("app store request succeeded",
		"method", method,
		"path", path,
		"status", res.StatusCode,
	)

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("appstore: decode %s %s response: %w", method, path, err)
	}
	return nil
}

// token returns the cached credential or issues a fresh one. The check
// and the issue happen under one lock so concurrent calls never observe
// a half-refreshed cache.
func (s *Session) token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.credential != nil && s.credential.ExpiresAt-credentialRefreshLeeway > now {
		return s.credential.Token, nil
	}
	credential, err := IssueCredential(s.auth, TokenOptions{Now: now})
	if err != nil {
		return "", err
	}
	s.credential = &credential
	return credential.Token, nil
}

var _ core.Transport = (*Session)(nil)
