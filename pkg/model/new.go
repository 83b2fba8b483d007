package model

import (
	"time"

	"github.com/google/uuid"
)

// PrepareInsert stamps the server-assigned fields of a new model record: a
// fresh id, creation/modification provenance, and the default lifecycle
// status. Client-supplied values for these fields are discarded.
func (m *Model) PrepareInsert(actor string, now time.Time) {
	m.ID = uuid.New().String()
	m.CreatedAt = now
	m.ModifiedAt = now
	m.CreatedBy = actor
	m.ModifiedBy = actor
	if m.Status == "" {
		m.Status = StatusDevelopment
	}

	// Artifact locations are only ever populated by uploads.
	m.PklPath = ""
	m.ShapValuesPath = ""
	m.MetricsPlotPath = ""
	m.ConfusionMatrixPath = ""
	m.TotalCount = 0
}
