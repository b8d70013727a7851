package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/triade-beauty/intake/internal/domain"
	pfirestore "github.com/triade-beauty/intake/internal/platform/firestore"
	"github.com/triade-beauty/intake/internal/repositories"
)

const formConfigsCollection = "formConfigs"

// FormConfigRepository persists named form configurations keyed by name.
type FormConfigRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[domain.SavedFormConfig]
	now      func() time.Time
}

// FormConfigRepositoryOption customises repository construction.
type FormConfigRepositoryOption func(*FormConfigRepository)

// WithFormConfigClock injects a custom clock (useful for tests).
func WithFormConfigClock(clock func() time.Time) FormConfigRepositoryOption {
	return func(r *FormConfigRepository) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewFormConfigRepository constructs a Firestore-backed form config repository.
func NewFormConfigRepository(provider *pfirestore.Provider, opts ...FormConfigRepositoryOption) (*FormConfigRepository, error) {
	if provider == nil {
		return nil, errors.New("form config repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.SavedFormConfig) (any, error) {
		return encodeFormConfigDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.SavedFormConfig, error) {
		var doc formConfigDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.SavedFormConfig{}, err
		}
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = snap.CreateTime
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = snap.UpdateTime
		}
		return decodeFormConfigDocument(doc), nil
	}

	repo := &FormConfigRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[domain.SavedFormConfig](provider, formConfigsCollection, encoder, decoder),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

// List returns every saved configuration ordered by name.
func (r *FormConfigRepository) List(ctx context.Context) ([]domain.SavedFormConfig, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("form config repository not initialised")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	configs := make([]domain.SavedFormConfig, 0, len(docs))
	for _, doc := range docs {
		configs = append(configs, doc.Data)
	}
	return configs, nil
}

// FindByName loads one configuration by its name.
func (r *FormConfigRepository) FindByName(ctx context.Context, name string) (domain.SavedFormConfig, error) {
	if r == nil || r.base == nil {
		return domain.SavedFormConfig{}, errors.New("form config repository not initialised")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.SavedFormConfig{}, errors.New("form config repository: name is required")
	}
	doc, err := r.base.Get(ctx, name)
	if err != nil {
		return domain.SavedFormConfig{}, err
	}
	return doc.Data, nil
}

// Save stores a configuration under its name. Without overwrite an existing
// name is a conflict; with overwrite the previous CreatedAt is preserved and
// only UpdatedAt moves.
func (r *FormConfigRepository) Save(ctx context.Context, config domain.SavedFormConfig, overwrite bool) (domain.SavedFormConfig, error) {
	if r == nil || r.base == nil {
		return domain.SavedFormConfig{}, errors.New("form config repository not initialised")
	}
	config.Name = strings.TrimSpace(config.Name)
	if config.Name == "" {
		return domain.SavedFormConfig{}, errors.New("form config repository: name is required")
	}

	now := r.now().UTC()
	config.UpdatedAt = now

	docRef, err := r.base.DocumentRef(ctx, config.Name)
	if err != nil {
		return domain.SavedFormConfig{}, err
	}

	// The existence check and the write must agree, so both run in one
	// transaction. Two concurrent saves of the same name otherwise both
	// pass the check and the conflict is lost.
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		switch {
		case err == nil && snap.Exists():
			if !overwrite {
				return status.Error(codes.AlreadyExists, "configuration name already exists")
			}
			var existing formConfigDocument
			if err := snap.DataTo(&existing); err != nil {
				return err
			}
			config.CreatedAt = existing.CreatedAt
			if config.CreatedAt.IsZero() {
				config.CreatedAt = snap.CreateTime
			}
		case status.Code(err) == codes.NotFound || (err == nil && !snap.Exists()):
			config.CreatedAt = now
		default:
			return err
		}
		return tx.Set(docRef, encodeFormConfigDocument(config))
	})
	if err != nil {
		return domain.SavedFormConfig{}, pfirestore.WrapError("form_configs.save", err)
	}
	return config, nil
}

// Delete removes a configuration. Deleting an unknown name is a not-found error.
func (r *FormConfigRepository) Delete(ctx context.Context, name string) error {
	if r == nil || r.base == nil {
		return errors.New("form config repository not initialised")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("form config repository: name is required")
	}

	docRef, err := r.base.DocumentRef(ctx, name)
	if err != nil {
		return err
	}
	if _, err := r.base.Get(ctx, name); err != nil {
		return err
	}
	if _, err := docRef.Delete(ctx); err != nil {
		return pfirestore.WrapError("form_configs.delete", err)
	}
	return nil
}

func encodeFormConfigDocument(config domain.SavedFormConfig) formConfigDocument {
	return formConfigDocument{
		Name:             config.Name,
		Title:            config.Config.Title,
		Subtitle:         config.Config.Subtitle,
		RecordNamePrefix: config.Config.RecordNamePrefix,
		Hairstylists:     cloneSlice(config.Config.Hairstylists),
		MakeupArtists:    cloneSlice(config.Config.MakeupArtists),
		CreatedAt:        config.CreatedAt.UTC(),
		UpdatedAt:        config.UpdatedAt.UTC(),
	}
}

func decodeFormConfigDocument(doc formConfigDocument) domain.SavedFormConfig {
	return domain.SavedFormConfig{
		Name: doc.Name,
		Config: domain.FormConfig{
			Title:            doc.Title,
			Subtitle:         doc.Subtitle,
			RecordNamePrefix: doc.RecordNamePrefix,
			Hairstylists:     cloneSlice(doc.Hairstylists),
			MakeupArtists:    cloneSlice(doc.MakeupArtists),
		},
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

type formConfigDocument struct {
	Name             string    `firestore:"name"`
	Title            string    `firestore:"title"`
	Subtitle         string    `firestore:"subtitle,omitempty"`
	RecordNamePrefix string    `firestore:"recordNamePrefix,omitempty"`
	Hairstylists     []string  `firestore:"hairstylists,omitempty"`
	MakeupArtists    []string  `firestore:"makeupArtists,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt"`
	UpdatedAt        time.Time `firestore:"updatedAt"`
}

func cloneSlice(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

var _ repositories.FormConfigRepository = (*FormConfigRepository)(nil)
