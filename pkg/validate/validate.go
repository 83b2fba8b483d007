// Package validate checks create/update/auth payloads before they are
// submitted, mirroring the dashboard's form rules. Validators never mutate
// their input; they produce a list of field-level violations.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/modelgov/modelgov/pkg/model"
)

// MaxUploadBytes is the advisory upload size bound checked before an
// artifact is sent. The gateway itself does not enforce it.
const MaxUploadBytes = 50 * 1024 * 1024

var (
	namePattern    = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	versionPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	s3PathPattern  = regexp.MustCompile(`^s3://[a-z0-9.\-]+/.*`)
)

// FieldError is a single violation attributed to one payload field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the list of violations produced by one validation pass.
type Errors []FieldError

// Err returns the list as an error, or nil if there were no violations.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

func (e *Errors) add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// CreateModel validates a model creation payload.
func CreateModel(m *model.Model) Errors {
	var errs Errors

	switch {
	case len(m.Name) < 3:
		errs.add("name", "model name must be at least 3 characters")
	case len(m.Name) > 100:
		errs.add("name", "model name must not exceed 100 characters")
	case !namePattern.MatchString(m.Name):
		errs.add("name", "model name can only contain letters, numbers, underscores, hyphens, and dots")
	}

	switch {
	case len(m.Description) < 10:
		errs.add("description", "description must be at least 10 characters")
	case len(m.Description) > 1000:
		errs.add("description", "description must not exceed 1000 characters")
	}

	errs.checkOption("algorithm", m.Algorithm, model.Algorithms, true)
	errs.checkOption("function", m.Function, model.Functions, true)
	errs.checkOption("modelType", m.ModelType, model.ModelTypes, true)
	errs.checkOption("targetLevel", m.TargetLevel, model.TargetLevels, false)

	if m.Modeler != "" && len(m.Modeler) < 2 {
		errs.add("modeler", "modeler name must be at least 2 characters")
	}
	if m.ExternalURL != "" {
		if u, err := url.Parse(m.ExternalURL); err != nil || !u.IsAbs() || u.Host == "" {
			errs.add("externalUrl", "please enter a valid URL")
		}
	}
	if m.ModelVersionName != "" && !versionPattern.MatchString(m.ModelVersionName) {
		errs.add("modelVersionName", "version must follow semantic versioning (e.g., 1.0, 1.0.1)")
	}

	errs.checkOption("ADL_ACRE", m.ADLACRE, model.ADLACREOptions, false)
	errs.checkOption("ADL_ARES", m.ADLARES, model.ADLARESOptions, false)
	errs.checkOption("ADL_ARUS", m.ADLARUS, model.ADLARUSOptions, false)
	errs.checkOption("DS_CAMD", m.DSCAMD, model.DSCAMDOptions, false)
	errs.checkOption("DS_PRMD", m.DSPRMD, model.DSPRMDOptions, false)

	return errs
}

// UpdateModel validates a partial model update. Rules apply only to the
// fields present in the patch.
func UpdateModel(p model.ModelPatch) Errors {
	var errs Errors

	if p.Name != nil {
		switch {
		case len(*p.Name) < 3:
			errs.add("name", "model name must be at least 3 characters")
		case len(*p.Name) > 100:
			errs.add("name", "model name must not exceed 100 characters")
		case !namePattern.MatchString(*p.Name):
			errs.add("name", "model name can only contain letters, numbers, underscores, hyphens, and dots")
		}
	}
	if p.Description != nil {
		switch {
		case len(*p.Description) < 10:
			errs.add("description", "description must be at least 10 characters")
		case len(*p.Description) > 1000:
			errs.add("description", "description must not exceed 1000 characters")
		}
	}

	if p.Algorithm != nil {
		errs.checkOption("algorithm", *p.Algorithm, model.Algorithms, true)
	}
	if p.Function != nil {
		errs.checkOption("function", *p.Function, model.Functions, true)
	}
	if p.ModelType != nil {
		errs.checkOption("modelType", *p.ModelType, model.ModelTypes, true)
	}
	if p.TargetLevel != nil {
		errs.checkOption("targetLevel", *p.TargetLevel, model.TargetLevels, false)
	}
	if p.Modeler != nil && *p.Modeler != "" && len(*p.Modeler) < 2 {
		errs.add("modeler", "modeler name must be at least 2 characters")
	}
	if p.ExternalURL != nil && *p.ExternalURL != "" {
		if u, err := url.Parse(*p.ExternalURL); err != nil || !u.IsAbs() || u.Host == "" {
			errs.add("externalUrl", "please enter a valid URL")
		}
	}
	if p.ModelVersionName != nil && *p.ModelVersionName != "" &&
		!versionPattern.MatchString(*p.ModelVersionName) {
		errs.add("modelVersionName", "version must follow semantic versioning (e.g., 1.0, 1.0.1)")
	}

	if p.Status != nil && !p.Status.Valid() {
		errs.add("status", "status must be one of development, testing, production, deprecated")
	}
	if p.RiskLevel != nil && !p.RiskLevel.Valid() {
		errs.add("riskLevel", "risk level must be one of low, medium, high")
	}

	errs.checkMetric("accuracy", p.Accuracy)
	errs.checkMetric("precision", p.Precision)
	errs.checkMetric("recall", p.Recall)
	errs.checkMetric("f1Score", p.F1Score)
	errs.checkMetric("rocAuc", p.RocAuc)

	if p.ADLACRE != nil {
		errs.checkOption("ADL_ACRE", *p.ADLACRE, model.ADLACREOptions, false)
	}
	if p.ADLARES != nil {
		errs.checkOption("ADL_ARES", *p.ADLARES, model.ADLARESOptions, false)
	}
	if p.ADLARUS != nil {
		errs.checkOption("ADL_ARUS", *p.ADLARUS, model.ADLARUSOptions, false)
	}
	if p.DSCAMD != nil {
		errs.checkOption("DS_CAMD", *p.DSCAMD, model.DSCAMDOptions, false)
	}
	if p.DSPRMD != nil {
		errs.checkOption("DS_PRMD", *p.DSPRMD, model.DSPRMDOptions, false)
	}

	return errs
}

func (e *Errors) checkOption(field, value string, options []string, required bool) {
	if value == "" {
		if required {
			e.add(field, "a value is required")
		}
		return
	}
	if !model.ValidOption(options, value) {
		e.add(field, fmt.Sprintf("%q is not one of the allowed values", value))
	}
}

func (e *Errors) checkMetric(field string, value *float64) {
	if value != nil && (*value < 0 || *value > 1) {
		e.add(field, "must be between 0 and 1")
	}
}
