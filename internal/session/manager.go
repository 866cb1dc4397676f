// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	autherrors "playerauth/cli/internal/errors"
	"playerauth/cli/internal/identity"
	"playerauth/cli/internal/logging"
	"playerauth/cli/internal/profile"
	"playerauth/cli/internal/provider"
)

// DefaultSignInTimeout bounds the interactive provider step.
const DefaultSignInTimeout = 5 * time.Minute

// ProfileLoader turns a session token into a complete profile.
type ProfileLoader interface {
	Load(ctx context.Context, token identity.SessionToken) (profile.PlayerProfile, error)
}

// NoticeSource opens the server-push stream for a session token.
type NoticeSource interface {
	Watch(ctx context.Context, token identity.SessionToken) (<-chan identity.Notice, error)
}

// Manager is the session state machine.
type Manager struct {
	svc           identity.Service
	prov          provider.Provider
	loader        ProfileLoader
	bus           *Bus
	clock         clockwork.Clock
	log           zerolog.Logger
	signInTimeout time.Duration

	// credMu orders credential reads for resume against clears; taken before mu.
	credMu sync.Mutex

	mu      sync.Mutex
	state   State
	token   identity.SessionToken
	profile profile.PlayerProfile
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithClock sets the clock for sign-in deadlines and profile timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithSignInTimeout bounds the interactive provider step; 0 means unbounded.
func WithSignInTimeout(d time.Duration) Option {
	return func(m *Manager) { m.signInTimeout = d }
}

// WithLoader replaces the profile loader built from the identity service.
func WithLoader(l ProfileLoader) Option {
	return func(m *Manager) { m.loader = l }
}

// NewManager returns a Manager in SignedOut.
func NewManager(svc identity.Service, prov provider.Provider, opts ...Option) *Manager {
	m := &Manager{
		svc:           svc,
		prov:          prov,
		clock:         clockwork.NewRealClock(),
		log:           zerolog.Nop(),
		signInTimeout: DefaultSignInTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.loader == nil {
		m.loader = profile.NewLoader(svc, profile.WithClock(m.clock))
	}
	m.bus = NewBus(m.log)
	return m
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentProfile returns the last loaded profile while SignedIn or Expired.
func (m *Manager) CurrentProfile() (profile.PlayerProfile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.HasSession() {
		return profile.PlayerProfile{}, false
	}
	return m.profile, true
}

// Subscribe registers h for subsequent events.
func (m *Manager) Subscribe(h Handler) *Subscription {
	return m.bus.Subscribe(h)
}

// Flush waits until every event published so far has been delivered.
// It must not be called from a Handler.
func (m *Manager) Flush() {
	m.bus.Flush()
}

// Close delivers pending events and stops the event stream.
func (m *Manager) Close() {
	m.bus.Close()
}

// Start attempts the startup resume. Without a cached credential the manager
// stays SignedOut and publishes nothing.
func (m *Manager) Start(ctx context.Context) {
	m.credMu.Lock()
	m.mu.Lock()
	if m.state != SignedOut {
		m.rejectLocked("resume")
		m.mu.Unlock()
		m.credMu.Unlock()
		return
	}
	m.mu.Unlock()

	has, err := m.svc.HasCachedCredential(ctx)
	if err != nil {
		m.credMu.Unlock()
		m.mu.Lock()
		m.reportLocked(OpResume, autherrors.Ensure(err, autherrors.Storage, "check cached credential"))
		m.mu.Unlock()
		return
	}
	if !has {
		m.credMu.Unlock()
		m.log.Debug().Msg("no cached credential; staying signed out")
		return
	}

	m.mu.Lock()
	if m.state != SignedOut {
		m.rejectLocked("resume")
		m.mu.Unlock()
		m.credMu.Unlock()
		return
	}
	m.setStateLocked(ResumingSession)
	m.mu.Unlock()
	m.credMu.Unlock()

	token, err := m.svc.ResumeWithCachedCredential(ctx)
	if err != nil {
		m.fail(ResumingSession, OpResume, autherrors.Ensure(err, autherrors.Transport, "resume failed"))
		return
	}
	m.completeSignIn(ctx, ResumingSession, token)
}

// BeginInteractiveSignIn runs the provider flow and the token exchange. It
// returns when the attempt is over; the outcome is reported through events.
// Only permitted from SignedOut.
func (m *Manager) BeginInteractiveSignIn(ctx context.Context) {
	m.mu.Lock()
	if m.state != SignedOut {
		m.rejectLocked("interactive sign-in")
		m.mu.Unlock()
		return
	}
	m.setStateLocked(AwaitingInteractiveAuth)
	m.mu.Unlock()

	signCtx, cancel := ctx, context.CancelFunc(func() {})
	if m.signInTimeout > 0 {
		signCtx, cancel = clockwork.WithTimeout(ctx, m.clock, m.signInTimeout)
	}
	providerToken, err := m.prov.SignIn(signCtx)
	// Err on a fake-clock context blocks until done; cancel first.
	cancel()
	timedOut := errors.Is(signCtx.Err(), context.DeadlineExceeded)
	if err != nil {
		if timedOut && !autherrors.Is(err, autherrors.Timeout) {
			err = autherrors.Wrap(autherrors.Timeout, "interactive sign-in timed out", err)
		}
		m.prov.SignOut()
		m.fail(AwaitingInteractiveAuth, OpInteractiveSignIn, autherrors.Ensure(err, autherrors.Auth, "interactive sign-in failed"))
		return
	}

	if !m.advance(AwaitingInteractiveAuth, ExchangingToken) {
		return
	}
	token, err := m.svc.ExchangeProviderToken(ctx, providerToken)
	if err != nil {
		m.prov.SignOut()
		m.fail(ExchangingToken, OpExchange, autherrors.Ensure(err, autherrors.Transport, "token exchange failed"))
		return
	}
	m.completeSignIn(ctx, ExchangingToken, token)
}

// SignOut ends the session. From SignedIn or Expired the state flips to
// SignedOut before anything else and signed_out is published. When
// clearCredential is set the cached credential is deleted before SignOut
// returns, also from SignedOut. In-flight states reject the call.
func (m *Manager) SignOut(ctx context.Context, clearCredential bool) {
	if clearCredential {
		m.credMu.Lock()
		defer m.credMu.Unlock()
	}

	m.mu.Lock()
	switch {
	case m.state.HasSession():
		m.endSessionLocked()
		m.bus.Publish(Event{Type: EventSignedOut, State: SignedOut})
		m.mu.Unlock()
		m.prov.SignOut()
	case m.state == SignedOut:
		m.mu.Unlock()
	default:
		m.rejectLocked("sign-out")
		m.mu.Unlock()
		return
	}

	if !clearCredential {
		return
	}
	if err := m.svc.ClearCachedCredential(ctx); err != nil {
		m.mu.Lock()
		m.reportLocked(OpSignOut, autherrors.Ensure(err, autherrors.Storage, "clear cached credential"))
		m.mu.Unlock()
	}
}

// ClearCachedCredential deletes the cached credential without a state
// transition. It is refused while a sign-in is in flight.
func (m *Manager) ClearCachedCredential(ctx context.Context) error {
	m.credMu.Lock()
	defer m.credMu.Unlock()

	m.mu.Lock()
	st := m.state
	m.mu.Unlock()
	if st.InFlight() {
		return autherrors.New(autherrors.Rejected, "sign-in in progress").WithOp("clear_credential")
	}
	if err := m.svc.ClearCachedCredential(ctx); err != nil {
		return autherrors.Ensure(err, autherrors.Storage, "clear cached credential")
	}
	return nil
}

// HandleNotice applies a server-initiated notification.
func (m *Manager) HandleNotice(n identity.Notice) {
	m.mu.Lock()
	switch n.Kind {
	case identity.NoticeExpired:
		if m.state != SignedIn {
			m.ignoreLocked(n)
			break
		}
		m.setStateLocked(Expired)
		m.bus.Publish(Event{Type: EventExpired, State: Expired})
	case identity.NoticeSignedOut:
		if !m.state.HasSession() {
			m.ignoreLocked(n)
			break
		}
		m.endSessionLocked()
		m.bus.Publish(Event{Type: EventSignedOut, State: SignedOut})
		m.mu.Unlock()
		m.prov.SignOut()
		return
	case identity.NoticeStreamError:
		m.reportLocked(OpWatch, autherrors.New(autherrors.Transport, "notification stream failed: "+n.Reason))
	case identity.NoticeStreamClosed:
		m.log.Debug().Str("reason", n.Reason).Msg("notification stream closed")
	default:
		m.ignoreLocked(n)
	}
	m.mu.Unlock()
}

// Watch routes notices from src to HandleNotice until the stream ends, the
// session ends or ctx is done. Requires SignedIn.
func (m *Manager) Watch(ctx context.Context, src NoticeSource) error {
	m.mu.Lock()
	if m.state != SignedIn {
		st := m.state
		m.mu.Unlock()
		return autherrors.New(autherrors.Rejected, "watch requires a signed-in session, state is "+st.String()).WithOp(string(OpWatch))
	}
	token := m.token
	m.mu.Unlock()

	ch, err := src.Watch(ctx, token)
	if err != nil {
		err = autherrors.Ensure(err, autherrors.Transport, "open notification stream")
		m.mu.Lock()
		m.reportLocked(OpWatch, err)
		m.mu.Unlock()
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-ch:
			if !ok {
				return nil
			}
			m.HandleNotice(n)
			switch {
			case n.Kind == identity.NoticeStreamError:
				return autherrors.New(autherrors.Transport, "notification stream failed: "+n.Reason).WithOp(string(OpWatch))
			case n.Kind == identity.NoticeStreamClosed:
				return nil
			case m.State() == SignedOut:
				return nil
			}
		}
	}
}

// RefreshProfile re-fetches the profile while SignedIn and publishes
// avatar_updated with the new snapshot. A failure is published and returned
// but leaves the session signed in.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	m.mu.Lock()
	if m.state != SignedIn {
		st := m.state
		m.mu.Unlock()
		return autherrors.New(autherrors.Rejected, "refresh requires a signed-in session, state is "+st.String()).WithOp(string(OpRefreshProfile))
	}
	token := m.token
	m.mu.Unlock()

	p, err := m.loader.Load(ctx, token)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		err = ensureProfileLoad(err)
		m.reportLocked(OpRefreshProfile, err)
		return err
	}
	if m.state != SignedIn || m.token != token {
		m.log.Debug().Msg("session changed during profile refresh; result dropped")
		return nil
	}
	m.profile = p
	m.bus.Publish(Event{Type: EventAvatarUpdated, State: SignedIn, Profile: p})
	return nil
}

// completeSignIn loads the profile for token and finishes the transition from
// the in-flight state from. signed_in is only published with a complete profile.
func (m *Manager) completeSignIn(ctx context.Context, from State, token identity.SessionToken) {
	p, err := m.loader.Load(ctx, token)
	if err == nil && !p.Complete() {
		err = autherrors.New(autherrors.ProfileLoad, "incomplete profile")
	}
	if err != nil {
		m.prov.SignOut()
		m.fail(from, OpProfileLoad, ensureProfileLoad(err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != from {
		m.log.Warn().Str("state", m.state.String()).Str("expected", from.String()).Msg("sign-in result dropped")
		return
	}
	m.token = token
	m.profile = p
	m.setStateLocked(SignedIn)
	m.bus.Publish(Event{Type: EventSignedIn, State: SignedIn, Profile: p})
}

// advance moves from one in-flight state to the next.
func (m *Manager) advance(from, to State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != from {
		return false
	}
	m.setStateLocked(to)
	return true
}

// fail rolls an in-flight orchestration back to SignedOut and publishes one error.
func (m *Manager) fail(from State, op Operation, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == from {
		m.endSessionLocked()
	}
	m.reportLocked(op, err)
}

func (m *Manager) endSessionLocked() {
	m.token = ""
	m.profile = profile.PlayerProfile{}
	m.setStateLocked(SignedOut)
}

func (m *Manager) setStateLocked(to State) {
	if m.state == to {
		return
	}
	m.log.Debug().Str("from", m.state.String()).Str("to", to.String()).Msg("session transition")
	m.state = to
}

func (m *Manager) reportLocked(op Operation, err error) {
	m.log.Error().Str("op", string(op)).Str("kind", string(autherrors.KindOf(err))).
		Str("error", logging.Mask(err.Error())).Msg("session operation failed")
	m.bus.Publish(Event{Type: EventError, State: m.state, Op: op, Err: err})
}

func (m *Manager) rejectLocked(what string) {
	m.log.Warn().Str("state", m.state.String()).Msgf("%s rejected in current state", what)
}

func (m *Manager) ignoreLocked(n identity.Notice) {
	m.log.Info().Str("notice", string(n.Kind)).Str("state", m.state.String()).Msg("notice ignored in current state")
}

func ensureProfileLoad(err error) error {
	if autherrors.Is(err, autherrors.ProfileLoad) {
		return err
	}
	return autherrors.Wrap(autherrors.ProfileLoad, "load profile", err).WithOp(string(OpProfileLoad))
}
