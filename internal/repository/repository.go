package repository

import (
	"context"

	"github.com/mantism/hyperbolic/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound = RepositoryError("not found")
	// ErrStatusConflict is returned when a status transition is attempted
	// on a video that is not in the expected current state.
	ErrStatusConflict = RepositoryError("status conflict")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// TrickRepository defines the interface for interacting with the trick catalog.
type TrickRepository interface {
	Create(ctx context.Context, trick *domain.Trick) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trick, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Trick, error)
	List(ctx context.Context, category string) ([]domain.Trick, error)
}

// VideoRepository defines the interface for interacting with video metadata.
//
// Status transitions are compare-and-set: a transition only applies when the
// stored status matches the expected current status, so a completed or failed
// record can never be moved again and two racing confirms cannot both win.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error)
	// TransitionStatus moves the video from to only if its current
	// status equals from. Returns ErrStatusConflict otherwise.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to domain.VideoStatus) (*domain.Video, error)
	// ListExpiredPending returns pending videos whose grant expiry is in the past.
	ListExpiredPending(ctx context.Context, limit int64) ([]domain.Video, error)
}

// SessionRepository defines the interface for interacting with training sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}
