// Package model contains the entities of the governance registry and the
// enumerated option sets they are validated against.
package model

import (
	"time"

	"github.com/uptrace/bun"
)

// Status is the lifecycle status of a registered model. Transitions are not
// constrained server-side; any status may overwrite any other.
type Status string

// The set of model lifecycle statuses.
const (
	StatusDevelopment Status = "development"
	StatusTesting     Status = "testing"
	StatusProduction  Status = "production"
	StatusDeprecated  Status = "deprecated"
)

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	switch s {
	case StatusDevelopment, StatusTesting, StatusProduction, StatusDeprecated:
		return true
	}
	return false
}

// RiskLevel is the assessed risk classification of a model.
type RiskLevel string

// The set of risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is a member of the risk-level enum.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Model is a registered ML artifact record with metadata, metrics and
// lifecycle status. The JSON field names match the dashboard's wire format.
type Model struct {
	bun.BaseModel `bun:"table:models" json:"-"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name" json:"name"`
	Description string    `bun:"description" json:"description"`
	CreatedBy   string    `bun:"created_by" json:"createdBy"`
	ModifiedBy  string    `bun:"modified_by" json:"modifiedBy"`
	CreatedAt   time.Time `bun:"created_at" json:"createdAt"`
	ModifiedAt  time.Time `bun:"modified_at" json:"modifiedAt"`

	Algorithm        string `bun:"algorithm" json:"algorithm"`
	Function         string `bun:"function" json:"function"`
	ModelType        string `bun:"model_type" json:"modelType"`
	TargetLevel      string `bun:"target_level" json:"targetLevel,omitempty"`
	Tool             string `bun:"tool" json:"tool,omitempty"`
	ToolVersion      string `bun:"tool_version" json:"toolVersion,omitempty"`
	ScoreCodeType    string `bun:"score_code_type" json:"scoreCodeType,omitempty"`
	TrainCodeType    string `bun:"train_code_type" json:"trainCodeType,omitempty"`
	Modeler          string `bun:"modeler" json:"modeler,omitempty"`
	ExternalURL      string `bun:"external_url" json:"externalUrl,omitempty"`
	ModelVersionName string `bun:"model_version_name" json:"modelVersionName,omitempty"`

	Status Status `bun:"status" json:"status"`

	// Performance metrics, each a fraction in [0,1] when present.
	Accuracy  *float64 `bun:"accuracy" json:"accuracy,omitempty"`
	Precision *float64 `bun:"precision" json:"precision,omitempty"`
	Recall    *float64 `bun:"recall" json:"recall,omitempty"`
	F1Score   *float64 `bun:"f1_score" json:"f1Score,omitempty"`
	RocAuc    *float64 `bun:"roc_auc" json:"rocAuc,omitempty"`
	MSE       *float64 `bun:"mse" json:"mse,omitempty"`
	RMSE      *float64 `bun:"rmse" json:"rmse,omitempty"`
	MAE       *float64 `bun:"mae" json:"mae,omitempty"`
	R2Score   *float64 `bun:"r2_score" json:"r2Score,omitempty"`

	// Artifact locations, populated after uploads.
	PklPath             string `bun:"pkl_path" json:"pklPath,omitempty"`
	ShapValuesPath      string `bun:"shap_values_path" json:"shapValuesPath,omitempty"`
	MetricsPlotPath     string `bun:"metrics_plot_path" json:"metricsPlotPath,omitempty"`
	ConfusionMatrixPath string `bun:"confusion_matrix_path" json:"confusionMatrixPath,omitempty"`

	// Business taxonomy tags.
	ADLACRE string `bun:"adl_acre" json:"ADL_ACRE,omitempty"`
	ADLARES string `bun:"adl_ares" json:"ADL_ARES,omitempty"`
	ADLARUS string `bun:"adl_arus" json:"ADL_ARUS,omitempty"`
	DSCAMD  string `bun:"ds_camd" json:"DS_CAMD,omitempty"`
	DSPRMD  string `bun:"ds_prmd" json:"DS_PRMD,omitempty"`

	RiskLevel          RiskLevel  `bun:"risk_level" json:"riskLevel,omitempty"`
	NeedsRecalibration bool       `bun:"needs_recalibration" json:"needsRecalibration"`
	LastBacktestDate   *time.Time `bun:"last_backtest_date" json:"lastBacktestDate,omitempty"`
	NextReviewDate     *time.Time `bun:"next_review_date" json:"nextReviewDate,omitempty"`

	// TotalCount carries the window-function row count on list queries.
	TotalCount int `bun:"total_count,scanonly" json:"-"`
}

// Metrics are the dashboard aggregates over the registry.
type Metrics struct {
	TotalModels            int     `bun:"total_models" json:"totalModels"`
	ModelsInProduction     int     `bun:"models_in_production" json:"modelsInProduction"`
	ModelsNeedingReview    int     `bun:"models_needing_review" json:"modelsNeedingReview"`
	HighRiskModels         int     `bun:"high_risk_models" json:"highRiskModels"`
	AverageAccuracy        float64 `bun:"average_accuracy" json:"averageAccuracy"`
	ModelsCreatedThisMonth int     `bun:"models_created_this_month" json:"modelsCreatedThisMonth"`
}

// ArtifactColumn maps an artifact category tag to the column holding its
// location. Acting as an allow-list, it keeps arbitrary request input out of
// SQL identifiers.
func ArtifactColumn(artifactType string) (string, bool) {
	col, ok := map[string]string{
		"pkl":              "pkl_path",
		"shap_values":      "shap_values_path",
		"metrics_plot":     "metrics_plot_path",
		"confusion_matrix": "confusion_matrix_path",
	}[artifactType]
	return col, ok
}

// SetArtifactPath records an artifact location on the corresponding field.
// The artifact type must have passed ArtifactColumn first.
func (m *Model) SetArtifactPath(artifactType, location string) {
	switch artifactType {
	case "pkl":
		m.PklPath = location
	case "shap_values":
		m.ShapValuesPath = location
	case "metrics_plot":
		m.MetricsPlotPath = location
	case "confusion_matrix":
		m.ConfusionMatrixPath = location
	}
}
