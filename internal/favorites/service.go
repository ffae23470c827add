package favorites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

// FavoriteProject is one row of a user's favorites list.
type FavoriteProject struct {
	ProjectID      uuid.UUID            `json:"project_id"`
	Title          string               `json:"title"`
	Slug           string               `json:"slug"`
	FinancialGoal  decimal.Decimal      `json:"financial_goal"`
	CampaignStatus enums.CampaignStatus `json:"campaign_status"`
	FavoritedAt    time.Time            `json:"favorited_at"`
}

// FavoriteList wraps a page of favorited projects.
type FavoriteList struct {
	Projects   []FavoriteProject `json:"projects"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// Service exposes favorite management for authenticated users.
type Service interface {
	Add(ctx context.Context, userID, projectID uuid.UUID) error
	Remove(ctx context.Context, userID, projectID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*FavoriteList, error)
}

type service struct {
	repo *Repository
}

// NewService builds a favorites service with the required dependencies.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "favorites repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Add(ctx context.Context, userID, projectID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if projectID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	exists, err := s.repo.ProjectExists(ctx, projectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check project existence")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "proyecto no encontrado")
	}
	if err := s.repo.Add(ctx, userID, projectID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add favorite")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, projectID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if projectID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if err := s.repo.Remove(ctx, userID, projectID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*FavoriteList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.List(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}
	return list, nil
}
