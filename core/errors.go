package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorAuthConfigMissing      = "STORESYNC_AUTH_CONFIG_MISSING"
	ErrorMalformedToken         = "STORESYNC_MALFORMED_TOKEN"
	ErrorAppNotFound            = "STORESYNC_APP_NOT_FOUND"
	ErrorNoVersionForApp        = "STORESYNC_NO_VERSION_FOR_APP"
	ErrorVendorRequestFailed    = "STORESYNC_VENDOR_REQUEST_FAILED"
	ErrorTranslationUnavailable = "STORESYNC_TRANSLATION_UNAVAILABLE"
	ErrorBadInput               = "STORESYNC_BAD_INPUT"
	ErrorInternal               = "STORESYNC_INTERNAL_ERROR"
)

func NewAuthConfigMissingError(store string, missing ...string) *goerrors.Error {
	message := fmt.Sprintf("%s: auth configuration is missing", store)
	if len(missing) > 0 {
		message = fmt.Sprintf("%s: auth configuration is missing: %s", store, strings.Join(missing, ", "))
	}
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorAuthConfigMissing)
}

func NewMalformedTokenError(detail string) *goerrors.Error {
	message := "token does not split into three segments"
	if strings.TrimSpace(detail) != "" {
		message = "malformed token: " + strings.TrimSpace(detail)
	}
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorMalformedToken)
}

func NewAppNotFoundError(store string, identifier string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("%s: app not found for identifier %q", store, identifier),
		goerrors.CategoryNotFound,
	).
		WithCode(http.StatusNotFound).
		WithTextCode(ErrorAppNotFound)
}

func NewNoVersionError(store string, appID string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("%s: no version exists for app %s, create a version first", store, appID),
		goerrors.CategoryOperation,
	).
		WithCode(http.StatusConflict).
		WithTextCode(ErrorNoVersionForApp)
}

func NewBadInputError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorBadInput)
}

func NewTranslationUnavailableError(store string, locale string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("%s: no translation available for locale %s", store, locale),
		goerrors.CategoryNotFound,
	).
		WithCode(http.StatusNotFound).
		WithTextCode(ErrorTranslationUnavailable)
}

// MapError normalizes any error leaving a storesync component into a
// go-errors envelope with a storesync text code.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var reqErr *RequestError
	if goerrors.As(err, &reqErr) {
		return ensureEnvelope(reqErr.toServiceError())
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "app not found"):
		return ensureEnvelope(goerrors.New(err.Error(), goerrors.CategoryNotFound).WithTextCode(ErrorAppNotFound))
	case strings.Contains(msg, "no version"):
		return ensureEnvelope(goerrors.New(err.Error(), goerrors.CategoryOperation).WithTextCode(ErrorNoVersionForApp))
	case strings.Contains(msg, "token"), strings.Contains(msg, "credential"):
		return ensureEnvelope(goerrors.New(err.Error(), goerrors.CategoryAuth).WithTextCode(ErrorAuthConfigMissing))
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return ensureEnvelope(goerrors.New(err.Error(), goerrors.CategoryBadInput).WithTextCode(ErrorBadInput))
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureEnvelope(mapped)
}

func ensureEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = statusForCategory(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = textCodeForCategory(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func textCodeForCategory(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryNotFound:
		return ErrorAppNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorAuthConfigMissing
	case goerrors.CategoryOperation:
		return ErrorNoVersionForApp
	case goerrors.CategoryExternal:
		return ErrorVendorRequestFailed
	default:
		return ErrorInternal
	}
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
