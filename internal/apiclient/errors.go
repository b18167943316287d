package apiclient

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
)

const maxErrorDetail = 512

// messageKeys carry a single human readable message rather than a field error.
var messageKeys = map[string]bool{"error": true, "detail": true, "message": true}

// parseErrorResponse maps a non-2xx response onto the error taxonomy. Django
// REST framework answers either {"error": "..."}, {"detail": "..."} or a
// map of field name to a list of messages.
func parseErrorResponse(status int, body []byte) *appErrors.AppError {
	message := http.StatusText(status)
	fields := map[string][]string{}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for key, raw := range payload {
			if messageKeys[key] {
				var s string
				if json.Unmarshal(raw, &s) == nil && s != "" {
					message = s
				}

				continue
			}

			if msgs := fieldMessages(raw); len(msgs) > 0 {
				fields[key] = msgs
			}
		}
	}

	var appErr *appErrors.AppError

	switch {
	case status == http.StatusBadRequest && len(fields) > 0:
		if _, ok := payload["error"]; !ok {
			message = "Validation failed"
		}

		appErr = appErrors.ValidationError(message).WithFields(fields)
	case status == http.StatusBadRequest:
		appErr = appErrors.BadRequestError(message)
	case status == http.StatusUnauthorized:
		appErr = appErrors.UnauthorizedError(message)
	case status == http.StatusForbidden:
		appErr = appErrors.ForbiddenError(message)
	case status == http.StatusNotFound:
		appErr = appErrors.NotFoundError(message)
	default:
		appErr = appErrors.HTTPError(message, status)
	}

	appErr.StatusCode = status

	return appErr.WithDetail(truncateDetail(body))
}

func fieldMessages(raw json.RawMessage) []string {
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}

	var single string
	if json.Unmarshal(raw, &single) == nil && single != "" {
		return []string{single}
	}

	// nested serializer errors, e.g. {"items": {"0": ["..."]}}
	var nested map[string][]string
	if json.Unmarshal(raw, &nested) == nil {
		var out []string
		for k, msgs := range nested {
			for _, m := range msgs {
				out = append(out, k+": "+m)
			}
		}

		return out
	}

	return nil
}

// truncateDetail cuts body to maxErrorDetail bytes without splitting a rune.
func truncateDetail(body []byte) string {
	if len(body) <= maxErrorDetail {
		return string(body)
	}

	cut := maxErrorDetail
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}

	return string(body[:cut])
}
