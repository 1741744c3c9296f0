package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mantism/hyperbolic/internal/domain"
	"github.com/mantism/hyperbolic/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidTrick = errors.New("trick requires a name")

// TrickService exposes the trick catalog.
type TrickService interface {
	CreateTrick(ctx context.Context, trick *domain.Trick) (*domain.Trick, error)
	GetTrick(ctx context.Context, id primitive.ObjectID) (*domain.Trick, error)
	GetTrickBySlug(ctx context.Context, slug string) (*domain.Trick, error)
	ListTricks(ctx context.Context, category string) ([]domain.Trick, error)
}

type trickService struct {
	trickRepo repository.TrickRepository
}

// NewTrickService creates a new instance of trickService.
func NewTrickService(trickRepo repository.TrickRepository) TrickService {
	return &trickService{trickRepo: trickRepo}
}

func (s *trickService) CreateTrick(ctx context.Context, trick *domain.Trick) (*domain.Trick, error) {
	if strings.TrimSpace(trick.Name) == "" {
		return nil, ErrInvalidTrick
	}
	if trick.Slug == "" {
		trick.Slug = slugify(trick.Name)
	}

	id, err := s.trickRepo.Create(ctx, trick)
	if err != nil {
		return nil, err
	}
	trick.ID = id
	return trick, nil
}

func (s *trickService) GetTrick(ctx context.Context, id primitive.ObjectID) (*domain.Trick, error) {
	trick, err := s.trickRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrickNotFound
		}
		return nil, err
	}
	return trick, nil
}

func (s *trickService) GetTrickBySlug(ctx context.Context, slug string) (*domain.Trick, error) {
	trick, err := s.trickRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrickNotFound
		}
		return nil, err
	}
	return trick, nil
}

func (s *trickService) ListTricks(ctx context.Context, category string) ([]domain.Trick, error) {
	return s.trickRepo.List(ctx, category)
}

// slugify lowercases a trick name and joins its words with hyphens.
func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
