package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelgov/modelgov/pkg/ptrs"
)

func TestPatchEmpty(t *testing.T) {
	assert.True(t, ModelPatch{}.Empty())
	assert.False(t, ModelPatch{Name: ptrs.Ptr("renamed")}.Empty())
	assert.False(t, ModelPatch{NeedsRecalibration: ptrs.Ptr(false)}.Empty())
}

func TestPatchFieldsAllowList(t *testing.T) {
	status := StatusProduction
	p := ModelPatch{
		Name:     ptrs.Ptr("renamed"),
		Accuracy: ptrs.Ptr(0.9),
		Status:   &status,
	}

	fields := p.Fields()
	require.Len(t, fields, 3)

	columns := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		columns[f.Column] = f.Value
	}
	assert.Equal(t, "renamed", columns["name"])
	assert.Equal(t, StatusProduction, columns["status"])
	assert.Contains(t, columns, "accuracy")

	// Server-assigned columns can never appear, whatever the input.
	assert.NotContains(t, columns, "id")
	assert.NotContains(t, columns, "created_at")
	assert.NotContains(t, columns, "created_by")
	assert.NotContains(t, columns, "pkl_path")
}

func TestPatchApplyTo(t *testing.T) {
	m := &Model{
		Name:        "before",
		Description: "unchanged description here",
		Accuracy:    ptrs.Ptr(0.5),
	}
	review := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	p := ModelPatch{
		Name:           ptrs.Ptr("after"),
		Accuracy:       ptrs.Ptr(0.8),
		NextReviewDate: &review,
	}
	p.ApplyTo(m)

	assert.Equal(t, "after", m.Name)
	assert.Equal(t, "unchanged description here", m.Description)
	require.NotNil(t, m.Accuracy)
	assert.Equal(t, 0.8, *m.Accuracy)
	require.NotNil(t, m.NextReviewDate)
	assert.Equal(t, review, *m.NextReviewDate)
}

func TestPrepareInsertAssignsServerFields(t *testing.T) {
	now := time.Now().UTC()
	m := &Model{
		ID:        "client-chosen",
		Name:      "fresh-model",
		PklPath:   "s3://sneaky/path",
		CreatedBy: "impostor",
	}
	m.PrepareInsert("auditor@example.com", now)

	assert.NotEqual(t, "client-chosen", m.ID)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, now, m.CreatedAt)
	assert.Equal(t, now, m.ModifiedAt)
	assert.Equal(t, "auditor@example.com", m.CreatedBy)
	assert.Equal(t, "auditor@example.com", m.ModifiedBy)
	assert.Equal(t, StatusDevelopment, m.Status)
	assert.Empty(t, m.PklPath)
}

func TestArtifactColumnAllowList(t *testing.T) {
	for artifactType, want := range map[string]string{
		"pkl":              "pkl_path",
		"shap_values":      "shap_values_path",
		"metrics_plot":     "metrics_plot_path",
		"confusion_matrix": "confusion_matrix_path",
	} {
		col, ok := ArtifactColumn(artifactType)
		require.True(t, ok, artifactType)
		assert.Equal(t, want, col)
	}

	_, ok := ArtifactColumn("weights; DROP TABLE models")
	assert.False(t, ok)
}
