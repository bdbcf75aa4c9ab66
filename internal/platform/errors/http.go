package errors

import (
	"errors"
	"net/http"

	"github.com/louisbranch/ironarena/internal/platform/errors/i18n"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = "en-US"

// Payload is the wire shape of an error for JSON responses.
type Payload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// ToPayload converts domain errors to a client-facing payload.
// The user-facing message comes from the i18n catalog for the given locale,
// defaulting to en-US if the locale is empty.
func ToPayload(err error, locale string) Payload {
	if locale == "" {
		locale = DefaultLocale
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		catalog := i18n.GetCatalog(locale)
		return Payload{
			Code:    string(appErr.Code),
			Message: catalog.Format(string(appErr.Code), appErr.Metadata),
			Status:  appErr.Code.HTTPStatus(),
		}
	}

	// Unknown error - return internal with generic message
	return Payload{
		Code:    string(CodeUnknown),
		Message: "an unexpected error occurred",
		Status:  http.StatusInternalServerError,
	}
}
