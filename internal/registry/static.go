package registry

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/modelgov/modelgov/internal/db"
	"github.com/modelgov/modelgov/pkg/model"
	"github.com/modelgov/modelgov/pkg/ptrs"
)

// StaticStore is an in-memory Store seeded with demo records. It backs the
// dashboard when no database is configured and the handler tests.
type StaticStore struct {
	mu     sync.RWMutex
	models map[string]*model.Model
}

var _ Store = (*StaticStore)(nil)

// NewStaticStore returns an empty in-memory store.
func NewStaticStore() *StaticStore {
	return &StaticStore{models: make(map[string]*model.Model)}
}

// NewSeededStaticStore returns an in-memory store preloaded with a few demo
// records.
func NewSeededStaticStore() *StaticStore {
	s := NewStaticStore()
	now := time.Now().UTC()
	seeds := []model.Model{
		{
			Name:        "credit-risk-scorer",
			Description: "Gradient-boosted scorer for retail credit risk.",
			Algorithm:   "xgboost",
			Function:    "classification",
			ModelType:   "python",
			Status:      model.StatusProduction,
			Accuracy:    ptrs.Ptr(0.91),
			RiskLevel:   model.RiskHigh,
		},
		{
			Name:        "churn-predictor",
			Description: "Customer churn prediction over monthly activity.",
			Algorithm:   "random_forest",
			Function:    "classification",
			ModelType:   "python",
			Status:      model.StatusTesting,
			Accuracy:    ptrs.Ptr(0.84),
			RiskLevel:   model.RiskMedium,
		},
		{
			Name:        "demand-forecaster",
			Description: "Weekly demand regression for inventory planning.",
			Algorithm:   "lstm",
			Function:    "regression",
			ModelType:   "python",
			Status:      model.StatusDevelopment,
			RiskLevel:   model.RiskLow,
		},
	}
	for i := range seeds {
		m := seeds[i]
		m.PrepareInsert("system", now.Add(time.Duration(-i)*time.Hour))
		s.models[m.ID] = &m
	}
	return s
}

// ListModels filters, orders and pages the in-memory set with the same
// semantics as the database gateway.
func (s *StaticStore) ListModels(
	_ context.Context, req db.ListModelsRequest,
) ([]model.Model, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Initialized non-nil so an empty page serializes as [], never null.
	matched := []model.Model{}
	search := strings.ToLower(req.Search)
	for _, m := range s.models {
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Name), search) &&
			!strings.Contains(strings.ToLower(m.Description), search) {
			continue
		}
		if req.Algorithm != "" && m.Algorithm != req.Algorithm {
			continue
		}
		if req.Status != "" && string(m.Status) != req.Status {
			continue
		}
		matched = append(matched, *m)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (req.Page - 1) * req.Limit
	if start >= total {
		return []model.Model{}, total, nil
	}
	end := start + req.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// GetModel fetches by id or returns db.ErrNotFound.
func (s *StaticStore) GetModel(_ context.Context, id string) (*model.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.models[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := *m
	return &out, nil
}

// InsertModel stores a new record with server-assigned id and timestamps.
func (s *StaticStore) InsertModel(_ context.Context, m *model.Model, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.PrepareInsert(actor, time.Now().UTC())
	stored := *m
	s.models[m.ID] = &stored
	return nil
}

// UpdateModel applies a partial update, rejecting empty patches and unknown
// ids with the gateway's sentinels.
func (s *StaticStore) UpdateModel(
	_ context.Context, id string, p model.ModelPatch, actor string,
) (*model.Model, error) {
	if p.Empty() {
		return nil, db.ErrEmptyUpdate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.models[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	p.ApplyTo(m)
	m.ModifiedAt = time.Now().UTC()
	m.ModifiedBy = actor
	out := *m
	return &out, nil
}

// DeleteModel removes a record, returning it, or db.ErrNotFound.
func (s *StaticStore) DeleteModel(_ context.Context, id string) (*model.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.models[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	delete(s.models, id)
	return m, nil
}

// SetArtifactPath records an artifact location on the model.
func (s *StaticStore) SetArtifactPath(
	_ context.Context, id, artifactType, location string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.models[id]
	if !ok {
		return db.ErrNotFound
	}
	m.SetArtifactPath(artifactType, location)
	m.ModifiedAt = time.Now().UTC()
	return nil
}

// Metrics computes the dashboard aggregates over the in-memory set.
func (s *StaticStore) Metrics(_ context.Context) (*model.Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &model.Metrics{}
	monthStart := time.Date(
		time.Now().UTC().Year(), time.Now().UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	accuracySum, accuracyCount := 0.0, 0
	for _, m := range s.models {
		out.TotalModels++
		if m.Status == model.StatusProduction {
			out.ModelsInProduction++
		}
		if m.NeedsRecalibration ||
			(m.NextReviewDate != nil && !m.NextReviewDate.After(time.Now().UTC())) {
			out.ModelsNeedingReview++
		}
		if m.RiskLevel == model.RiskHigh {
			out.HighRiskModels++
		}
		if m.Accuracy != nil {
			accuracySum += *m.Accuracy
			accuracyCount++
		}
		if !m.CreatedAt.Before(monthStart) {
			out.ModelsCreatedThisMonth++
		}
	}
	if accuracyCount > 0 {
		out.AverageAccuracy = accuracySum / float64(accuracyCount)
	}
	return out, nil
}
