// Package registry abstracts the model data source. Exactly one strategy
// serves requests: the live Postgres gateway or a static in-memory demo set.
// The two are selected by configuration and never merged.
package registry

import (
	"context"

	"github.com/modelgov/modelgov/internal/db"
	"github.com/modelgov/modelgov/pkg/model"
)

// Store is the persistence contract of the registry.
type Store interface {
	ListModels(ctx context.Context, req db.ListModelsRequest) ([]model.Model, int, error)
	GetModel(ctx context.Context, id string) (*model.Model, error)
	InsertModel(ctx context.Context, m *model.Model, actor string) error
	UpdateModel(ctx context.Context, id string, p model.ModelPatch, actor string) (*model.Model, error)
	DeleteModel(ctx context.Context, id string) (*model.Model, error)
	SetArtifactPath(ctx context.Context, id, artifactType, location string) error
	Metrics(ctx context.Context) (*model.Metrics, error)
}
