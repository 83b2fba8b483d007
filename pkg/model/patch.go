package model

import (
	"reflect"
	"time"
)

// ModelPatch is a partial update of a Model. Each field is a pointer: nil
// means "leave unchanged". Server-assigned fields (id, timestamps, artifact
// paths, provenance) are deliberately absent, so client input can never reach
// them.
type ModelPatch struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	Algorithm        *string `json:"algorithm"`
	Function         *string `json:"function"`
	ModelType        *string `json:"modelType"`
	TargetLevel      *string `json:"targetLevel"`
	Tool             *string `json:"tool"`
	ToolVersion      *string `json:"toolVersion"`
	ScoreCodeType    *string `json:"scoreCodeType"`
	TrainCodeType    *string `json:"trainCodeType"`
	Modeler          *string `json:"modeler"`
	ExternalURL      *string `json:"externalUrl"`
	ModelVersionName *string `json:"modelVersionName"`

	Status *Status `json:"status"`

	Accuracy  *float64 `json:"accuracy"`
	Precision *float64 `json:"precision"`
	Recall    *float64 `json:"recall"`
	F1Score   *float64 `json:"f1Score"`
	RocAuc    *float64 `json:"rocAuc"`
	MSE       *float64 `json:"mse"`
	RMSE      *float64 `json:"rmse"`
	MAE       *float64 `json:"mae"`
	R2Score   *float64 `json:"r2Score"`

	ADLACRE *string `json:"ADL_ACRE"`
	ADLARES *string `json:"ADL_ARES"`
	ADLARUS *string `json:"ADL_ARUS"`
	DSCAMD  *string `json:"DS_CAMD"`
	DSPRMD  *string `json:"DS_PRMD"`

	RiskLevel          *RiskLevel `json:"riskLevel"`
	NeedsRecalibration *bool      `json:"needsRecalibration"`
	LastBacktestDate   *time.Time `json:"lastBacktestDate"`
	NextReviewDate     *time.Time `json:"nextReviewDate"`
}

// Empty reports whether the patch carries no effective fields.
func (p ModelPatch) Empty() bool {
	v := reflect.ValueOf(p)
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).IsNil() {
			return false
		}
	}
	return true
}

// FieldUpdate is one column assignment produced from a patch.
type FieldUpdate struct {
	Column string
	Value  interface{}
}

// Fields returns the column assignments for the fields present in the patch.
// This is the single allow-list both store implementations build on.
func (p ModelPatch) Fields() []FieldUpdate {
	var fields []FieldUpdate
	add := func(present bool, column string, value interface{}) {
		if present {
			fields = append(fields, FieldUpdate{Column: column, Value: value})
		}
	}

	add(p.Name != nil, "name", deref(p.Name))
	add(p.Description != nil, "description", deref(p.Description))
	add(p.Algorithm != nil, "algorithm", deref(p.Algorithm))
	add(p.Function != nil, "function", deref(p.Function))
	add(p.ModelType != nil, "model_type", deref(p.ModelType))
	add(p.TargetLevel != nil, "target_level", deref(p.TargetLevel))
	add(p.Tool != nil, "tool", deref(p.Tool))
	add(p.ToolVersion != nil, "tool_version", deref(p.ToolVersion))
	add(p.ScoreCodeType != nil, "score_code_type", deref(p.ScoreCodeType))
	add(p.TrainCodeType != nil, "train_code_type", deref(p.TrainCodeType))
	add(p.Modeler != nil, "modeler", deref(p.Modeler))
	add(p.ExternalURL != nil, "external_url", deref(p.ExternalURL))
	add(p.ModelVersionName != nil, "model_version_name", deref(p.ModelVersionName))
	add(p.Status != nil, "status", deref(p.Status))
	add(p.Accuracy != nil, "accuracy", p.Accuracy)
	add(p.Precision != nil, "precision", p.Precision)
	add(p.Recall != nil, "recall", p.Recall)
	add(p.F1Score != nil, "f1_score", p.F1Score)
	add(p.RocAuc != nil, "roc_auc", p.RocAuc)
	add(p.MSE != nil, "mse", p.MSE)
	add(p.RMSE != nil, "rmse", p.RMSE)
	add(p.MAE != nil, "mae", p.MAE)
	add(p.R2Score != nil, "r2_score", p.R2Score)
	add(p.ADLACRE != nil, "adl_acre", deref(p.ADLACRE))
	add(p.ADLARES != nil, "adl_ares", deref(p.ADLARES))
	add(p.ADLARUS != nil, "adl_arus", deref(p.ADLARUS))
	add(p.DSCAMD != nil, "ds_camd", deref(p.DSCAMD))
	add(p.DSPRMD != nil, "ds_prmd", deref(p.DSPRMD))
	add(p.RiskLevel != nil, "risk_level", deref(p.RiskLevel))
	add(p.NeedsRecalibration != nil, "needs_recalibration", deref(p.NeedsRecalibration))
	add(p.LastBacktestDate != nil, "last_backtest_date", p.LastBacktestDate)
	add(p.NextReviewDate != nil, "next_review_date", p.NextReviewDate)

	return fields
}

func deref[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// ApplyTo copies the present fields of the patch onto m.
func (p ModelPatch) ApplyTo(m *Model) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat := func(dst **float64, src *float64) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}

	setString(&m.Name, p.Name)
	setString(&m.Description, p.Description)
	setString(&m.Algorithm, p.Algorithm)
	setString(&m.Function, p.Function)
	setString(&m.ModelType, p.ModelType)
	setString(&m.TargetLevel, p.TargetLevel)
	setString(&m.Tool, p.Tool)
	setString(&m.ToolVersion, p.ToolVersion)
	setString(&m.ScoreCodeType, p.ScoreCodeType)
	setString(&m.TrainCodeType, p.TrainCodeType)
	setString(&m.Modeler, p.Modeler)
	setString(&m.ExternalURL, p.ExternalURL)
	setString(&m.ModelVersionName, p.ModelVersionName)
	setString(&m.ADLACRE, p.ADLACRE)
	setString(&m.ADLARES, p.ADLARES)
	setString(&m.ADLARUS, p.ADLARUS)
	setString(&m.DSCAMD, p.DSCAMD)
	setString(&m.DSPRMD, p.DSPRMD)

	setFloat(&m.Accuracy, p.Accuracy)
	setFloat(&m.Precision, p.Precision)
	setFloat(&m.Recall, p.Recall)
	setFloat(&m.F1Score, p.F1Score)
	setFloat(&m.RocAuc, p.RocAuc)
	setFloat(&m.MSE, p.MSE)
	setFloat(&m.RMSE, p.RMSE)
	setFloat(&m.MAE, p.MAE)
	setFloat(&m.R2Score, p.R2Score)

	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.RiskLevel != nil {
		m.RiskLevel = *p.RiskLevel
	}
	if p.NeedsRecalibration != nil {
		m.NeedsRecalibration = *p.NeedsRecalibration
	}
	if p.LastBacktestDate != nil {
		t := *p.LastBacktestDate
		m.LastBacktestDate = &t
	}
	if p.NextReviewDate != nil {
		t := *p.NextReviewDate
		m.NextReviewDate = &t
	}
}
