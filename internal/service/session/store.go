// Package session owns the process-wide authentication state. Consumers read
// it through Current and Token; only SetAuthenticated, Clear and the refresh
// path write it.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"go.uber.org/zap"
)

type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
}

type IdentityFetcher interface {
	Me(ctx context.Context, token string) (*domain.Identity, error)
}

type Store struct {
	tokens     TokenStore
	identities IdentityFetcher
	logger     *zap.Logger

	// mu serializes writers; readers load state without locking.
	mu    sync.Mutex
	state atomic.Pointer[domain.Session]
	once  sync.Once
}

func NewStore(tokens TokenStore, identities IdentityFetcher, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		tokens:     tokens,
		identities: identities,
		logger:     logger,
	}
	s.state.Store(&domain.Session{LoadState: domain.LoadStateLoading})
	return s
}

// Current returns the read-only snapshot. It never blocks.
func (s *Store) Current() domain.Snapshot {
	return s.state.Load().Snapshot()
}

// Token returns the credential token for a request about to be sent. The
// caller must use the returned value for the whole request.
func (s *Store) Token() string {
	return s.state.Load().Token
}

// Initialize loads a persisted token and, if one exists, refreshes the
// identity with it. It runs once per Store; later calls return
// domain.ErrAlreadyInitialized.
func (s *Store) Initialize(ctx context.Context) error {
	ran := false
	s.once.Do(func() {
		ran = true
		s.initialize(ctx)
	})
	if !ran {
		return domain.ErrAlreadyInitialized
	}
	return nil
}

func (s *Store) initialize(ctx context.Context) {
	token, err := s.tokens.LoadToken(ctx)
	if err != nil {
		s.logger.Warn("could not load persisted token, starting logged out", zap.Error(err))
		token = ""
	}

	s.mu.Lock()
	if token == "" {
		s.state.Store(&domain.Session{LoadState: domain.LoadStateReady})
		s.mu.Unlock()
		return
	}
	s.state.Store(&domain.Session{Token: token, LoadState: domain.LoadStateLoading})
	s.mu.Unlock()

	_ = s.refresh(ctx, token)
}

// Refresh re-fetches the identity with the current token and replaces it
// wholesale. Any failure clears the session, except cancellation of ctx;
// there is no retry.
func (s *Store) Refresh(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return domain.ErrNotAuthenticated
	}
	return s.refresh(ctx, token)
}

func (s *Store) refresh(ctx context.Context, token string) error {
	identity, err := s.identities.Me(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A login, logout or newer refresh may have replaced the token while this
	// request was in flight; its result no longer applies.
	if s.state.Load().Token != token {
		s.logger.Debug("discarding stale identity refresh")
		return nil
	}

	// Shutdown while the refresh is in flight says nothing about the token.
	if err != nil && ctx.Err() != nil {
		s.logger.Info("identity refresh interrupted", zap.Error(err))
		return fmt.Errorf("refresh identity: %w", ctx.Err())
	}

	if err != nil {
		s.logger.Info("identity refresh failed, clearing session",
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		s.clearLocked(ctx)
		return err
	}

	id := *identity
	s.state.Store(&domain.Session{Identity: &id, Token: token, LoadState: domain.LoadStateReady})
	return nil
}

// SetAuthenticated persists token and installs identity. When persisting
// fails the session is left unchanged.
func (s *Store) SetAuthenticated(ctx context.Context, identity domain.Identity, token string) error {
	if token == "" {
		return fmt.Errorf("set authenticated: empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tokens.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	id := identity
	s.state.Store(&domain.Session{Identity: &id, Token: token, LoadState: domain.LoadStateReady})
	s.logger.Info("session authenticated", zap.String("user_id", identity.ID))
	return nil
}

// Clear erases the persisted token and the identity. When the token cannot
// be erased the session is left unchanged so the caller can retry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tokens.DeleteToken(ctx); err != nil {
		return fmt.Errorf("erase persisted token: %w", err)
	}
	s.state.Store(&domain.Session{LoadState: domain.LoadStateReady})
	s.logger.Info("session cleared")
	return nil
}

// clearLocked drops a session whose token was rejected. The in-memory state is
// cleared even if the persisted token survives; it is rejected again on the
// next start.
func (s *Store) clearLocked(ctx context.Context) {
	if err := s.tokens.DeleteToken(ctx); err != nil {
		s.logger.Warn("could not erase persisted token", zap.Error(err))
	}
	s.state.Store(&domain.Session{LoadState: domain.LoadStateReady})
}
