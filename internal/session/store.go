// Package session persists the server session cookies between CLI runs so a
// login in one invocation authenticates the next.
package session

import (
	"context"
	"net/http"
	"time"
)

// Cookie is the subset of a cookie the jar hands back for a URL.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Snapshot struct {
	BaseURL string    `json:"base_url"`
	Cookies []Cookie  `json:"cookies"`
	SavedAt time.Time `json:"saved_at"`
}

type Store interface {
	// Load returns nil, nil when nothing has been saved yet.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Clear(ctx context.Context) error
}

func FromHTTPCookies(baseURL string, cookies []*http.Cookie) *Snapshot {
	snap := &Snapshot{BaseURL: baseURL, SavedAt: time.Now().UTC()}

	for _, c := range cookies {
		snap.Cookies = append(snap.Cookies, Cookie{Name: c.Name, Value: c.Value})
	}

	return snap
}

func (s *Snapshot) HTTPCookies() []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}

	return cookies
}
