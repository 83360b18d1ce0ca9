package playstore

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-storesync/core"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	publisherScope  = "https://www.googleapis.com/auth/androidpublisher"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	assertionTTLSeconds = 3600
	tokenRefreshLeeway  = 60
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// IssueAssertion builds the RS256-signed service-account assertion the
// Google token endpoint exchanges for an access token.
func IssueAssertion(cfg core.PlayStoreConfig, now int64) (string, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return "", core.NewAuthConfigMissingError("play-store", missing...)
	}

	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	header := map[string]any{
		"alg": "RS256",
		"typ": "JWT",
	}
	claims := map[string]any{
		"iss":   strings.TrimSpace(cfg.ClientEmail),
		"scope": publisherScope,
		"aud":   tokenURL,
		"iat":   now,
		"exp":   now + assertionTTLSeconds,
	}

	headerRaw, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("playstore: marshal assertion header: %w", err)
	}
	claimsRaw, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("playstore: marshal assertion claims: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerRaw) +
		"." +
		base64.RawURLEncoding.EncodeToString(claimsRaw)

	key, err := parseRSAPrivateKey(cfg.PrivateKey)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256([]byte(signingInput))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("playstore: sign assertion: %w", err)
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

func parseRSAPrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(pemData)))
	if block == nil {
		return nil, fmt.Errorf("playstore: private key is not valid PEM")
	}
	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("playstore: private key is not an RSA key")
		}
		return key, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("playstore: parse private key: %w", err)
	}
	return key, nil
}

// TokenSource exchanges service-account assertions for access tokens
// and caches the result until close to expiry. Refresh is lazy.
type TokenSource struct {
	cfg        core.PlayStoreConfig
	httpClient HTTPDoer
	now        func() int64

	mu        sync.Mutex
	token     string
	expiresAt int64
}

func NewTokenSource(cfg core.PlayStoreConfig, httpClient HTTPDoer, now func() int64) (*TokenSource, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, core.NewAuthConfigMissingError("play-store", missing...)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	return &TokenSource{cfg: cfg, httpClient: httpClient, now: now}, nil
}

func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if s == nil {
		return "", fmt.Errorf("playstore: token source is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && s.expiresAt-tokenRefreshLeeway > now {
		return s.token, nil
	}

	assertion, err := IssueAssertion(s.cfg, now)
	if err != nil {
		return "", err
	}
	token, expiresIn, err := s.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}
	s.token = token
	s.expiresAt = now + expiresIn
	return token, nil
}

func (s *TokenSource) exchange(ctx context.Context, assertion string) (string, int64, error) {
	tokenURL := strings.TrimSpace(s.cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("playstore: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("playstore: token exchange: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return "", 0, fmt.Errorf("playstore: read token response: %w", err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return "", 0, &core.RequestError{
			Store:  "play-store",
			Status: res.StatusCode,
			Body:   string(payload),
		}
	}

	var decoded struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", 0, fmt.Errorf("playstore: decode token response: %w", err)
	}
	if decoded.AccessToken == "" {
		return "", 0, fmt.Errorf("playstore: token response is missing access_token")
	}
	expiresIn := decoded.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = assertionTTLSeconds
	}
	return decoded.AccessToken, expiresIn, nil
}
