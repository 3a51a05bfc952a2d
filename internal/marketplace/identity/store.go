// Package identity holds the current user of one session.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
	"github.com/green-harvest/harvest-backend/internal/storage/kv"
	"github.com/rs/zerolog"
)

// UserKey is the storage slot of the current identity
const UserKey = "user"

// SessionKey returns the identity slot of a session
func SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, UserKey)
}

// Store reads and writes a single identity slot. It performs no validation;
// forms in the service layer are responsible for that.
type Store struct {
	kv    kv.Store
	key   string
	ttl   time.Duration
	newID domain.IDGenerator
	log   zerolog.Logger
}

type Option func(*Store)

// WithTTL expires the slot ttl after each write
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithIDGenerator overrides how upgraded identities get their id
func WithIDGenerator(gen domain.IDGenerator) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates a Store bound to the given slot key
func NewStore(store kv.Store, key string, opts ...Option) *Store {
	s := &Store{
		kv:    store,
		key:   key,
		newID: domain.NewID,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the stored identity. found is false when the slot is empty
// or holds data that no longer decodes.
func (s *Store) Current(ctx context.Context) (p domain.Profile, found bool, err error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load identity: %w", err)
	}

	p, err = domain.DecodeProfile(data)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("discarding unreadable identity")
		return nil, false, nil
	}
	return p, true, nil
}

// Set replaces the stored identity
func (s *Store) Set(ctx context.Context, p domain.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data, s.ttl); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Clear removes the stored identity
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// UpgradeToRole completes base with the role details, assigns the result a
// fresh id and stores it as the current identity.
func (s *Store) UpgradeToRole(ctx context.Context, base domain.User, details domain.RoleDetails) (domain.Profile, error) {
	p := details.Complete(base, s.newID(string(details.Role())))
	if err := s.Set(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("user_id", p.Base().ID).
		Str("role", string(details.Role())).
		Msg("identity upgraded")
	return p, nil
}
