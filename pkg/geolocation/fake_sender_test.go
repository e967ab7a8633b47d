package geolocation

import (
	"context"
	"sync"

	"github.com/telekom/geomail/pkg/mail"
)

// fakeSender records every envelope and fails with err when set.
type fakeSender struct {
	mu    sync.Mutex
	sent  []mail.Envelope
	err   error
	calls int
}

func (f *fakeSender) Send(_ context.Context, env mail.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, env)
	return nil
}

func (f *fakeSender) GetHost() string { return "fake" }
func (f *fakeSender) GetPort() int    { return 0 }

func (f *fakeSender) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSender) Sent() []mail.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Envelope(nil), f.sent...)
}
