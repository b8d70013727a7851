package repositories

import (
	"context"

	domain "github.com/triade-beauty/intake/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// FormConfigRepository persists named form configurations. Names are the
// document identity: saving an existing name without overwrite must surface a
// RepositoryError with IsConflict.
type FormConfigRepository interface {
	List(ctx context.Context) ([]domain.SavedFormConfig, error)
	FindByName(ctx context.Context, name string) (domain.SavedFormConfig, error)
	Save(ctx context.Context, config domain.SavedFormConfig, overwrite bool) (domain.SavedFormConfig, error)
	Delete(ctx context.Context, name string) error
}

// HealthRepository aggregates dependency probes for readiness reporting.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
