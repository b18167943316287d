package apiclient_test

import (
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"Bare array", `[{"id":1,"name":"Rings","slug":"rings"},{"id":2,"name":"Mugs","slug":"mugs"}]`, []string{"rings", "mugs"}},
		{"Paginated envelope", `{"count":1,"next":null,"previous":null,"results":[{"id":1,"slug":"rings"}]}`, []string{"rings"}},
		{"Empty array", `[]`, []string{}},
		{"Object without results", `{"detail":"ok"}`, []string{}},
		{"Results not an array", `{"results":{"id":1}}`, []string{}},
		{"Null", `null`, []string{}},
		{"Empty body", ``, []string{}},
		{"Garbage", `<html>`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats := apiclient.DecodeList[models.Category]([]byte(tt.body))
			require.NotNil(t, cats)

			slugs := make([]string, 0, len(cats))
			for _, c := range cats {
				slugs = append(slugs, c.Slug)
			}

			assert.Equal(t, tt.want, slugs)
		})
	}
}
