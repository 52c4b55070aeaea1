// Package session persists the single per-user wizard slot. A user has at
// most one active flow; starting a new one overwrites the old slot and
// /cancel clears it. Abandoned slots have no expiry.
package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
)

type Store struct {
	sessions repository.SessionsRepository
}

func NewStore(sessions repository.SessionsRepository) *Store {
	return &Store{sessions: sessions}
}

// Load fills wizardOut from the stored flow state, if any. A missing session
// is not an error: the caller gets a nil session and an untouched wizardOut.
func (s *Store) Load(ctx context.Context, userID int64, wizardOut any) (*models.UserSession, error) {
	stored, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if wizardOut != nil && len(stored.FlowState) > 0 {
		if err := json.Unmarshal(stored.FlowState, wizardOut); err != nil {
			return nil, err
		}
	}
	return stored, nil
}

func (s *Store) Save(ctx context.Context, userID int64, flowName *string, wizardState any) error {
	var payload []byte
	if wizardState != nil {
		buf, err := json.Marshal(wizardState)
		if err != nil {
			return err
		}
		payload = buf
	}
	return s.sessions.Upsert(ctx, models.UserSession{
		UserID:      userID,
		CurrentFlow: flowName,
		FlowState:   payload,
	})
}

func (s *Store) Clear(ctx context.Context, userID int64) error {
	return s.sessions.Delete(ctx, userID)
}
