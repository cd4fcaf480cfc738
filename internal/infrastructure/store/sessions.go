package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/platelens/backend/internal/domain"
)

const sessionKeyPrefix = "session:"

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + id)
}

// CreateSession persists a new session record, assigning its id and
// creation time. Returns the generated id.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) (string, error) {
	// Badger transactions cannot observe ctx, so honor cancellation before
	// entering one.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	suffix, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	session.ID = "ses-" + suffix
	session.CreatedAt = time.Now().UTC()

	if err := s.set(sessionKey(session.ID), session); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return session.ID, nil
}

// GetSession returns a session record by id.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session domain.Session
	err := s.get(sessionKey(id), &session)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return &session, nil
}

// UpdateItems replaces the session's item list wholesale and sets the
// imagesProcessed flag, as a single read-modify-write transaction.
func (s *Store) UpdateItems(ctx context.Context, id string, items []domain.EnrichedItem, imagesProcessed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if err != nil {
			return err
		}

		var session domain.Session
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		}); err != nil {
			return err
		}

		session.Items = items
		session.ImagesProcessed = imagesProcessed

		data, err := json.Marshal(&session)
		if err != nil {
			return err
		}
		return txn.Set(sessionKey(id), data)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("updating session %s: %w", id, err)
	}
	return nil
}
