package mocks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/aaravmahajanofficial/storefront/internal/apiclient"
	"github.com/stretchr/testify/mock"
)

// API is a testify mock of apiclient.API. Decoding methods take the value to
// decode into out from the first extra return argument, e.g.
//
//	m.On("Get", mock.Anything, apiclient.PathCart, mock.Anything, mock.Anything).Return(nil, cart)
type API struct {
	mock.Mock
}

var _ apiclient.API = (*API)(nil)

func (m *API) Do(ctx context.Context, method, path string, body io.Reader, headers http.Header) (*apiclient.Response, error) {
	args := m.Called(ctx, method, path, body, headers)

	resp, _ := args.Get(0).(*apiclient.Response)

	return resp, args.Error(1)
}

func (m *API) JSON(ctx context.Context, method, path string, payload, out any) error {
	args := m.Called(ctx, method, path, payload, out)

	return fill(args, out)
}

func (m *API) Get(ctx context.Context, path string, query url.Values, out any) error {
	args := m.Called(ctx, path, query, out)

	return fill(args, out)
}

func (m *API) GetRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	args := m.Called(ctx, path, query)

	data, _ := args.Get(0).([]byte)

	return data, args.Error(1)
}

func (m *API) Multipart(ctx context.Context, method, path string, form *apiclient.MultipartForm, out any) error {
	args := m.Called(ctx, method, path, form, out)

	return fill(args, out)
}

func (m *API) InvalidateCSRF() {
	m.Called()
}

// fill copies args[1] into out through JSON, the way the real client would
// decode a response body.
func fill(args mock.Arguments, out any) error {
	err := args.Error(0)
	if err != nil || out == nil || len(args) < 2 || args.Get(1) == nil {
		return err
	}

	data, marshalErr := json.Marshal(args.Get(1))
	if marshalErr != nil {
		return marshalErr
	}

	return json.Unmarshal(data, out)
}
