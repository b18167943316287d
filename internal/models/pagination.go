package models

import "encoding/json"

// PaginatedResponse is the envelope list endpoints use once pagination is
// switched on server side.
type PaginatedResponse struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  json.RawMessage `json:"results"`
}
