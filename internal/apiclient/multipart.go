package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
)

// MultipartForm is a form body with plain fields and files read from disk.
type MultipartForm struct {
	Fields map[string]string
	// Files maps a form field name to a local file path.
	Files map[string]string
}

func (f *MultipartForm) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, key := range sortedKeys(f.Fields) {
		if err := w.WriteField(key, f.Fields[key]); err != nil {
			return nil, "", err
		}
	}

	for _, key := range sortedKeys(f.Files) {
		if err := writeFile(w, key, f.Files[key]); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}

	_, err = io.Copy(part, file)

	return err
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Multipart sends form as multipart/form-data and decodes the JSON response into out.
func (c *Client) Multipart(ctx context.Context, method, path string, form *MultipartForm, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return appErrors.ValidationError("Failed to build upload").WithError(err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", contentType)

	resp, err := c.do(ctx, method, path, nil, body, headers)
	if err != nil {
		return err
	}

	return decodeInto(resp.Body, out)
}
