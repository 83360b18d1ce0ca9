package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Transport performs authenticated vendor calls. Implementations own the
// credential cache and the base URL; paths are relative. Non-2xx
// responses surface as *RequestError.
type Transport interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Patch(ctx context.Context, path string, body any) error
}

const maxErrorBodyBytes = 2048

// RequestError is the typed failure for a non-2xx vendor response. Body
// is kept truncated for diagnostics. A 401 points at a credential
// problem; a 409 usually means the target resource is in a non-editable
// lifecycle state.
type RequestError struct {
	Store  string
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e == nil {
		return "vendor request failed"
	}
	body := truncateBody(e.Body)
	if body == "" {
		return fmt.Sprintf("%s: request failed with status %d", e.Store, e.Status)
	}
	return fmt.Sprintf("%s: request failed with status %d: %s", e.Store, e.Status, body)
}

func (e *RequestError) toServiceError() *goerrors.Error {
	category := goerrors.CategoryExternal
	switch e.Status {
	case http.StatusUnauthorized:
		category = goerrors.CategoryAuth
	case http.StatusNotFound:
		category = goerrors.CategoryNotFound
	case http.StatusConflict:
		category = goerrors.CategoryConflict
	}
	return goerrors.New(e.Error(), category).
		WithCode(e.Status).
		WithTextCode(ErrorVendorRequestFailed)
}

func truncateBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if len(trimmed) <= maxErrorBodyBytes {
		return trimmed
	}
	return trimmed[:maxErrorBodyBytes] + "..."
}
