package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"

	"github.com/aaravmahajanofficial/storefront/internal/models"
)

// DecodeList accepts either a bare JSON array or a paginated envelope with a
// "results" array. Any other shape yields an empty, non-nil slice.
func DecodeList[T any](data []byte) []T {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []T{}
	}

	switch trimmed[0] {
	case '[':
		return decodeArray[T](trimmed)
	case '{':
		var page models.PaginatedResponse
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return []T{}
		}

		return decodeArray[T](bytes.TrimSpace(page.Results))
	}

	return []T{}
}

func decodeArray[T any](data []byte) []T {
	if len(data) == 0 || data[0] != '[' {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return []T{}
	}

	return items
}

// GetList fetches path and normalises the response with DecodeList.
func GetList[T any](ctx context.Context, api API, path string, query url.Values) ([]T, error) {
	data, err := api.GetRaw(ctx, path, query)
	if err != nil {
		return nil, err
	}

	return DecodeList[T](data), nil
}
