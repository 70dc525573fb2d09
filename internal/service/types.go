package service

import (
	"context"

	"employee-management/internal/models"
)

// Repository is the store the service reads and writes through.
type Repository interface {
	Ping(ctx context.Context) error
	ListSummary(ctx context.Context) ([]models.EmployeeSummary, error)
	ListDetailed(ctx context.Context) ([]models.Employee, error)
	Upsert(ctx context.Context, e models.Employee, image *string) (models.Employee, models.UpsertOutcome, error)
	Delete(ctx context.Context, id string) (models.Employee, error)
}

// ListCache holds serialized list responses. Implementations report a
// miss as (false, nil).
type ListCache interface {
	Load(ctx context.Context, key string, dest any) (bool, error)
	Store(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Manager is what the HTTP layer depends on.
type Manager interface {
	Ping(ctx context.Context) error
	ListSummary(ctx context.Context) ([]models.EmployeeSummary, error)
	ListDetailed(ctx context.Context) ([]models.Employee, error)
	Save(ctx context.Context, e models.Employee, image *string) (models.Employee, models.UpsertOutcome, error)
	Delete(ctx context.Context, id string) (models.Employee, error)
}
