package appstore

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-storesync/core"
)

// Audience is the fixed token audience App Store Connect expects.
const Audience = "appstoreconnect-v1"

const tokenAlgorithm = "ES256"

// Credential is an issued short-lived token. Immutable; a refresh issues
// a new one instead of mutating it.
type Credential struct {
	Token     string
	ExpiresAt int64
}

type TokenOptions struct {
	// Now is the issue time in epoch seconds. Zero means time.Now.
	Now int64
	// ExpirationSeconds defaults to 600 and is capped at 1200; the
	// platform rejects longer-lived tokens.
	ExpirationSeconds int
}

// IssueCredential builds the compact three-segment signed token for App
// Store Connect: base64url(header) "." base64url(payload) "."
// base64url(signature), no padding.
func IssueCredential(cfg core.AppStoreConfig, options TokenOptions) (Credential, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return Credential{}, core.NewAuthConfigMissingError("app-store", missing...)
	}

	now := options.Now
	if now == 0 {
		now = time.Now().Unix()
	}
	expiration := options.ExpirationSeconds
	if expiration <= 0 {
		expiration = core.DefaultTokenExpirationSeconds
	}
	if expiration > core.MaxTokenExpirationSeconds {
		expiration = core.MaxTokenExpirationSeconds
	}
	expiresAt := now + int64(expiration)

	header := map[string]any{
		"alg": tokenAlgorithm,
		"kid": strings.TrimSpace(cfg.KeyID),
		"typ": "JWT",
	}
	payload := map[string]any{
		"iss": strings.TrimSpace(cfg.IssuerID),
		"aud": Audience,
		"exp": expiresAt,
	}

	headerRaw, err := json.Marshal(header)
	if err != nil {
		return Credential{}, fmt.Errorf("appstore: marshal token header: %w", err)
	}
	payloadRaw, err := json.Marshal(payload)
	if err != nil {
		return Credential{}, fmt.Errorf("appstore: marshal token payload: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerRaw) +
		"." +
		base64.RawURLEncoding.EncodeToString(payloadRaw)

	key, err := parseECPrivateKey(cfg.PrivateKey)
	if err != nil {
		return Credential{}, err
	}
	signature, err := signES256(key, signingInput)
	if err != nil {
		return Credential{}, err
	}

	return Credential{
		Token:     signingInput + "." + base64.RawURLEncoding.EncodeToString(signature),
		ExpiresAt: expiresAt,
	}, nil
}

// DecodedToken holds the decoded header and payload segments plus the
// raw signature segment.
type DecodedToken struct {
	Header    map[string]any
	Payload   map[string]any
	Signature string
}

// DecodeToken splits a compact token and decodes header and payload. It
// fails with a malformed-token error when the token does not split into
// exactly three non-empty segments. The signature is not verified.
func DecodeToken(token string) (DecodedToken, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return DecodedToken{}, core.NewMalformedTokenError("")
	}
	header, err := decodeSegment(parts[0])
	if err != nil {
		return DecodedToken{}, core.NewMalformedTokenError("header segment: " + err.Error())
	}
	payload, err := decodeSegment(parts[1])
	if err != nil {
		return DecodedToken{}, core.NewMalformedTokenError("payload segment: " + err.Error())
	}
	return DecodedToken{
		Header:    header,
		Payload:   payload,
		Signature: parts[2],
	}, nil
}

func decodeSegment(segment string) (map[string]any, error) {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseECPrivateKey(pemData string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(pemData)))
	if block == nil {
		return nil, fmt.Errorf("appstore: private key is not valid PEM")
	}
	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		key, ok := parsed.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("appstore: private key is not an EC key")
		}
		return key, nil
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("appstore: parse private key: %w", err)
	}
	return key, nil
}

// signES256 produces the fixed-width R||S signature the compact token
// format requires, not the ASN.1 form.
func signES256(key *ecdsa.PrivateKey, signingInput string) ([]byte, error) {
	digest := sha256.Sum256([]byte(signingInput))
	r, s, err := ecdsa.Sign(rand.Reader, key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("appstore: sign token: %w", err)
	}
	keyBytes := (key.Curve.Params().BitSize + 7) / 8
	signature := make([]byte, keyBytes*2)
	r.FillBytes(signature[:keyBytes])
	s.FillBytes(signature[keyBytes:])
	return signature, nil
}
