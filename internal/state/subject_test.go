package state_test

import (
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/state"
	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	var s state.Subject[int]
	var got []string

	unsubA := s.Subscribe(func(v int) { got = append(got, "a") })
	s.Subscribe(func(v int) { got = append(got, "b") })

	s.Notify(1)
	assert.Equal(t, []string{"a", "b"}, got)

	unsubA()
	unsubA()
	got = nil

	s.Notify(2)
	assert.Equal(t, []string{"b"}, got)
	assert.Equal(t, 1, s.Len())

	s.Close()
	got = nil

	s.Notify(3)
	s.Subscribe(func(int) { got = append(got, "late") })
	s.Notify(4)

	assert.Empty(t, got)
	assert.Equal(t, 0, s.Len())
}

func TestSubjectReentrantSubscribe(t *testing.T) {
	var s state.Subject[string]
	calls := 0

	s.Subscribe(func(string) {
		calls++
		// subscribing from a callback must not deadlock
		s.Subscribe(func(string) {})
	})

	s.Notify("x")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, s.Len())
}
