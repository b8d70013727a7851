package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/triade-beauty/intake/internal/repositories"
)

var errFormConfigRepositoryRequired = errors.New("form_config: repository is required")

// ErrFormConfigInvalid indicates the configuration failed validation.
var ErrFormConfigInvalid = errors.New("form_config: invalid configuration")

// ErrFormConfigNotFound indicates no configuration exists under the name.
var ErrFormConfigNotFound = errors.New("form_config: not found")

// ErrFormConfigConflict indicates the name is taken and overwrite was not requested.
var ErrFormConfigConflict = errors.New("form_config: name already exists")

const maxFormConfigNameLength = 120

// FormConfigServiceDeps bundles collaborators required to construct a form config service.
// Timestamps live repository-side; see firestore.WithFormConfigClock.
type FormConfigServiceDeps struct {
	Repository repositories.FormConfigRepository
}

type formConfigService struct {
	repo repositories.FormConfigRepository
}

var _ FormConfigService = (*formConfigService)(nil)

// NewFormConfigService wires dependencies into a FormConfigService implementation.
func NewFormConfigService(deps FormConfigServiceDeps) (FormConfigService, error) {
	if deps.Repository == nil {
		return nil, errFormConfigRepositoryRequired
	}
	return &formConfigService{repo: deps.Repository}, nil
}

func (s *formConfigService) List(ctx context.Context) ([]SavedFormConfig, error) {
	if ctx == nil {
		return nil, errors.New("form_config: context is required")
	}
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("form_config: list: %w", err)
	}
	return configs, nil
}

func (s *formConfigService) Get(ctx context.Context, name string) (SavedFormConfig, error) {
	if ctx == nil {
		return SavedFormConfig{}, errors.New("form_config: context is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return SavedFormConfig{}, fmt.Errorf("%w: name is required", ErrFormConfigInvalid)
	}

	config, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return SavedFormConfig{}, s.mapRepositoryError(err, name)
	}
	return config, nil
}

func (s *formConfigService) Save(ctx context.Context, config SavedFormConfig, overwrite bool) (SavedFormConfig, error) {
	if ctx == nil {
		return SavedFormConfig{}, errors.New("form_config: context is required")
	}
	config.Name = strings.TrimSpace(config.Name)
	if err := validateFormConfig(config); err != nil {
		return SavedFormConfig{}, err
	}

	saved, err := s.repo.Save(ctx, config, overwrite)
	if err != nil {
		return SavedFormConfig{}, s.mapRepositoryError(err, config.Name)
	}
	return saved, nil
}

func (s *formConfigService) Delete(ctx context.Context, name string) error {
	if ctx == nil {
		return errors.New("form_config: context is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrFormConfigInvalid)
	}

	if err := s.repo.Delete(ctx, name); err != nil {
		return s.mapRepositoryError(err, name)
	}
	return nil
}

func (s *formConfigService) mapRepositoryError(err error, name string) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %s", ErrFormConfigNotFound, name)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %s", ErrFormConfigConflict, name)
		}
	}
	return fmt.Errorf("form_config: %w", err)
}

func validateFormConfig(config SavedFormConfig) error {
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrFormConfigInvalid)
	}
	if len(config.Name) > maxFormConfigNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrFormConfigInvalid, maxFormConfigNameLength)
	}
	return nil
}
