package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/modelgov/modelgov/pkg/model"
)

// ListModelsRequest carries the pagination and filter parameters of a list
// operation. Page and Limit are 1-based and must be positive.
type ListModelsRequest struct {
	Page      int
	Limit     int
	Search    string
	Algorithm string
	Status    string
}

// ListModels returns one page of models ordered most-recently-created first,
// along with the exact total over the filtered set. The total comes from a
// window function so pagination metadata is never estimated.
func (db *PgDB) ListModels(
	ctx context.Context, req ListModelsRequest,
) ([]model.Model, int, error) {
	// Initialized non-nil so an empty page serializes as [], never null.
	models := []model.Model{}
	q := db.bun.NewSelect().
		Model(&models).
		ModelTableExpr("models AS m").
		ColumnExpr("m.*").
		ColumnExpr("COUNT(*) OVER() AS total_count")

	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("m.name ILIKE ?", pattern).
				WhereOr("m.description ILIKE ?", pattern)
		})
	}
	if req.Algorithm != "" {
		q = q.Where("m.algorithm = ?", req.Algorithm)
	}
	if req.Status != "" {
		q = q.Where("m.status = ?", req.Status)
	}

	err := q.OrderExpr("m.created_at DESC").
		Limit(req.Limit).
		Offset((req.Page - 1) * req.Limit).
		Scan(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "error listing models")
	}

	total := 0
	if len(models) > 0 {
		total = models[0].TotalCount
	}
	return models, total, nil
}

// GetModel fetches a model by id, returning ErrNotFound when no row matches.
func (db *PgDB) GetModel(ctx context.Context, id string) (*model.Model, error) {
	m := &model.Model{}
	err := db.bun.NewSelect().Model(m).Where("id = ?", id).Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, errors.Wrapf(err, "error fetching model %q", id)
	}
	return m, nil
}

// InsertModel creates a model row. The id, timestamps, provenance and
// default status are server-assigned before the insert.
func (db *PgDB) InsertModel(ctx context.Context, m *model.Model, actor string) error {
	m.PrepareInsert(actor, time.Now().UTC())
	if _, err := db.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return errors.Wrapf(err, "error creating model %q", m.Name)
	}
	return nil
}

// UpdateModel applies a partial update in a single statement. Only fields
// present in the patch enter the SET clause; modified_at and modified_by are
// always refreshed. An empty patch returns ErrEmptyUpdate without touching
// the database, and an unknown id returns ErrNotFound.
func (db *PgDB) UpdateModel(
	ctx context.Context, id string, p model.ModelPatch, actor string,
) (*model.Model, error) {
	fields := p.Fields()
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	updated := &model.Model{}
	q := db.bun.NewUpdate().Model(updated).Where("id = ?", id).Returning("*")
	for _, f := range fields {
		q = q.Set("? = ?", bun.Ident(f.Column), f.Value)
	}
	q = q.Set("modified_at = ?", time.Now().UTC()).
		Set("modified_by = ?", actor)

	err := q.Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, errors.Wrapf(err, "error updating model %q", id)
	}
	return updated, nil
}

// DeleteModel removes a model row and returns the deleted record, or
// ErrNotFound when no row matches.
func (db *PgDB) DeleteModel(ctx context.Context, id string) (*model.Model, error) {
	deleted := &model.Model{}
	err := db.bun.NewDelete().Model(deleted).Where("id = ?", id).Returning("*").Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, errors.Wrapf(err, "error deleting model %q", id)
	}
	return deleted, nil
}

// SetArtifactPath records an uploaded artifact's location on the model row.
// The column is resolved through the artifact allow-list, never from raw
// request input.
func (db *PgDB) SetArtifactPath(
	ctx context.Context, id, artifactType, location string,
) error {
	column, ok := model.ArtifactColumn(artifactType)
	if !ok {
		return errors.Errorf("unknown artifact type %q", artifactType)
	}

	res, err := db.bun.NewUpdate().Model((*model.Model)(nil)).
		Set("? = ?", bun.Ident(column), location).
		Set("modified_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "error recording artifact path for model %q", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Metrics computes the dashboard aggregates in one statement.
func (db *PgDB) Metrics(ctx context.Context) (*model.Metrics, error) {
	m := &model.Metrics{}
	err := db.bun.NewSelect().
		Table("models").
		ColumnExpr("COUNT(*) AS total_models").
		ColumnExpr("COUNT(*) FILTER (WHERE status = ?) AS models_in_production", model.StatusProduction).
		ColumnExpr("COUNT(*) FILTER (WHERE needs_recalibration OR next_review_date <= now()) AS models_needing_review").
		ColumnExpr("COUNT(*) FILTER (WHERE risk_level = ?) AS high_risk_models", model.RiskHigh).
		ColumnExpr("COALESCE(AVG(accuracy), 0) AS average_accuracy").
		ColumnExpr("COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now())) AS models_created_this_month").
		Scan(ctx, m)
	if err != nil {
		return nil, errors.Wrap(err, "error computing registry metrics")
	}
	return m, nil
}
