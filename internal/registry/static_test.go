package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelgov/modelgov/internal/db"
	"github.com/modelgov/modelgov/pkg/model"
	"github.com/modelgov/modelgov/pkg/ptrs"
)

func TestInsertAssignsIdentity(t *testing.T) {
	s := NewStaticStore()
	ctx := context.Background()

	m := &model.Model{Name: "fresh", Description: "a fresh model record"}
	require.NoError(t, s.InsertModel(ctx, m, "alice@example.com"))

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, model.StatusDevelopment, m.Status)
	assert.Equal(t, "alice@example.com", m.CreatedBy)
	assert.Equal(t, m.CreatedAt, m.ModifiedAt)

	other := &model.Model{Name: "another", Description: "another model record"}
	require.NoError(t, s.InsertModel(ctx, other, "alice@example.com"))
	assert.NotEqual(t, m.ID, other.ID)
}

func TestGetUnknownID(t *testing.T) {
	s := NewSeededStaticStore()
	_, err := s.GetModel(context.Background(), "nope")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUpdateSemantics(t *testing.T) {
	s := NewSeededStaticStore()
	ctx := context.Background()

	models, _, err := s.ListModels(ctx, db.ListModelsRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, models)
	id := models[0].ID

	_, err = s.UpdateModel(ctx, id, model.ModelPatch{}, "bob@example.com")
	assert.ErrorIs(t, err, db.ErrEmptyUpdate)

	patch := model.ModelPatch{Name: ptrs.Ptr("renamed"), Accuracy: ptrs.Ptr(0.99)}
	updated, err := s.UpdateModel(ctx, id, patch, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	require.NotNil(t, updated.Accuracy)
	assert.Equal(t, 0.99, *updated.Accuracy)
	assert.Equal(t, "bob@example.com", updated.ModifiedBy)
	assert.True(t, updated.ModifiedAt.After(updated.CreatedAt))

	_, err = s.UpdateModel(ctx, "nope", patch, "bob@example.com")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestDeleteReturnsRecord(t *testing.T) {
	s := NewSeededStaticStore()
	ctx := context.Background()

	models, total, err := s.ListModels(ctx, db.ListModelsRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	id := models[0].ID

	deleted, err := s.DeleteModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, deleted.ID)

	_, remaining, err := s.ListModels(ctx, db.ListModelsRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, total-1, remaining)

	_, err = s.DeleteModel(ctx, id)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestListFiltersAndPaging(t *testing.T) {
	s := NewSeededStaticStore()
	ctx := context.Background()

	all, total, err := s.ListModels(ctx, db.ListModelsRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	// Most recently created first.
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	byAlgorithm, total, err := s.ListModels(ctx, db.ListModelsRequest{
		Page: 1, Limit: 10, Algorithm: "xgboost",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byAlgorithm, 1)
	assert.Equal(t, "credit-risk-scorer", byAlgorithm[0].Name)

	bySearch, total, err := s.ListModels(ctx, db.ListModelsRequest{
		Page: 1, Limit: 10, Search: "CHURN",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, bySearch, 1)

	page2, total, err := s.ListModels(ctx, db.ListModelsRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page2, 1)

	beyond, total, err := s.ListModels(ctx, db.ListModelsRequest{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.NotNil(t, beyond)
	assert.Empty(t, beyond)
}

func TestSetArtifactPath(t *testing.T) {
	s := NewSeededStaticStore()
	ctx := context.Background()

	models, _, err := s.ListModels(ctx, db.ListModelsRequest{Page: 1, Limit: 1})
	require.NoError(t, err)
	id := models[0].ID

	require.NoError(t, s.SetArtifactPath(ctx, id, "pkl", "https://bucket/models/x/model.pkl"))
	m, err := s.GetModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket/models/x/model.pkl", m.PklPath)

	assert.ErrorIs(t, s.SetArtifactPath(ctx, "nope", "pkl", "loc"), db.ErrNotFound)
}

func TestMetricsAggregates(t *testing.T) {
	s := NewSeededStaticStore()

	m, err := s.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalModels)
	assert.Equal(t, 1, m.ModelsInProduction)
	assert.Equal(t, 1, m.HighRiskModels)
	assert.InDelta(t, (0.91+0.84)/2, m.AverageAccuracy, 1e-9)
}
