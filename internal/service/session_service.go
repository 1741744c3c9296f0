package service

import (
	"context"
	"errors"

	"github.com/mantism/hyperbolic/internal/domain"
	"github.com/mantism/hyperbolic/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionNotOwned = errors.New("session does not belong to this user")
)

// SessionService logs and edits a user's training sessions.
type SessionService interface {
	StartSession(ctx context.Context, userID primitive.ObjectID, notes string) (*domain.Session, error)
	GetMySessions(ctx context.Context, userID primitive.ObjectID) ([]domain.Session, error)
	UpdateSession(ctx context.Context, userID primitive.ObjectID, session *domain.Session) (*domain.Session, error)
	DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error
}

type sessionService struct {
	sessionRepo repository.SessionRepository
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(sessionRepo repository.SessionRepository) SessionService {
	return &sessionService{sessionRepo: sessionRepo}
}

func (s *sessionService) StartSession(ctx context.Context, userID primitive.ObjectID, notes string) (*domain.Session, error) {
	session := &domain.Session{
		UserID: userID,
		Notes:  notes,
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id
	return session, nil
}

func (s *sessionService) GetMySessions(ctx context.Context, userID primitive.ObjectID) ([]domain.Session, error) {
	return s.sessionRepo.GetByUserID(ctx, userID)
}

// UpdateSession replaces duration, notes, and tallies on one of the
// caller's own sessions.
func (s *sessionService) UpdateSession(ctx context.Context, userID primitive.ObjectID, session *domain.Session) (*domain.Session, error) {
	existing, err := s.sessionRepo.GetByID(ctx, session.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrSessionNotOwned
	}

	session.UserID = userID
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetByID(ctx, session.ID)
}

func (s *sessionService) DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	err := s.sessionRepo.Delete(ctx, sessionID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}
