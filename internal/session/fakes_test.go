// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"playerauth/cli/internal/identity"
)

// fakeIdentity is an in-memory identity service. It also tracks how many
// sign-in orchestrations touch it at once.
type fakeIdentity struct {
	mu          sync.Mutex
	cached      bool
	hasErr      error
	resumeErr   error
	exchangeErr error
	profile     identity.ProfileData
	profileErr  error
	clearErr    error

	resumeCalls   int
	exchangeCalls int
	profileCalls  int
	clearCalls    int

	inflight *inflight
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{profile: identity.ProfileData{PlayerID: "p-1", DisplayName: "Ada"}}
}

func (f *fakeIdentity) HasCachedCredential(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cached, f.hasErr
}

func (f *fakeIdentity) ResumeWithCachedCredential(context.Context) (identity.SessionToken, error) {
	if f.inflight != nil {
		defer f.inflight.enter()()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumeCalls++
	if f.resumeErr != nil {
		return "", f.resumeErr
	}
	return "st-resumed", nil
}

func (f *fakeIdentity) ExchangeProviderToken(_ context.Context, providerToken string) (identity.SessionToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	f.cached = true
	return identity.SessionToken("st-" + providerToken), nil
}

func (f *fakeIdentity) FetchProfile(context.Context, identity.SessionToken) (identity.ProfileData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	return f.profile, f.profileErr
}

func (f *fakeIdentity) ClearCachedCredential(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cached = false
	return nil
}

func (f *fakeIdentity) hasCached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cached
}

func (f *fakeIdentity) set(fn func(f *fakeIdentity)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// fakeProvider blocks SignIn on gate when one is set.
type fakeProvider struct {
	token    string
	err      error
	gate     chan struct{}
	started  chan struct{}
	calls    atomic.Int32
	signOuts atomic.Int32
	inflight *inflight
}

func (p *fakeProvider) SignIn(ctx context.Context) (string, error) {
	if p.inflight != nil {
		defer p.inflight.enter()()
	}
	p.calls.Add(1)
	if p.started != nil {
		select {
		case p.started <- struct{}{}:
		default:
		}
	}
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if p.err != nil {
		return "", p.err
	}
	return p.token, nil
}

func (p *fakeProvider) SignOut() { p.signOuts.Add(1) }

// inflight records the highest number of concurrent callers.
type inflight struct {
	cur atomic.Int32
	max atomic.Int32
}

func (i *inflight) enter() func() {
	n := i.cur.Add(1)
	for {
		m := i.max.Load()
		if n <= m || i.max.CompareAndSwap(m, n) {
			break
		}
	}
	return func() { i.cur.Add(-1) }
}

// recorder collects delivered events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func record(t *testing.T, m *Manager) *recorder {
	t.Helper()
	r := &recorder{}
	sub := m.Subscribe(func(ev Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	})
	t.Cleanup(sub.Unsubscribe)
	return r
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) types() []EventType {
	var out []EventType
	for _, ev := range r.all() {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, ev := range r.all() {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// noticeFeed is a NoticeSource backed by a channel the test writes to.
type noticeFeed struct {
	ch    chan identity.Notice
	token identity.SessionToken
	err   error
}

func (f *noticeFeed) Watch(_ context.Context, token identity.SessionToken) (<-chan identity.Notice, error) {
	f.token = token
	if f.err != nil {
		return nil, f.err
	}
	return f.ch, nil
}
