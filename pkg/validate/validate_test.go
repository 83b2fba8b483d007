package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelgov/modelgov/pkg/model"
	"github.com/modelgov/modelgov/pkg/ptrs"
)

func validModel() *model.Model {
	return &model.Model{
		Name:        "credit-risk-scorer",
		Description: "Gradient-boosted scorer for retail credit risk.",
		Algorithm:   "xgboost",
		Function:    "classification",
		ModelType:   "python",
	}
}

func fieldsOf(errs Errors) []string {
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field)
	}
	return fields
}

func TestCreateModelValid(t *testing.T) {
	require.Empty(t, CreateModel(validModel()))
}

func TestCreateModelRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.Model)
		field  string
	}{
		{"short name", func(m *model.Model) { m.Name = "ab" }, "name"},
		{"bad name chars", func(m *model.Model) { m.Name = "has spaces!" }, "name"},
		{"short description", func(m *model.Model) { m.Description = "too short" }, "description"},
		{"unknown algorithm", func(m *model.Model) { m.Algorithm = "quantum" }, "algorithm"},
		{"missing function", func(m *model.Model) { m.Function = "" }, "function"},
		{"unknown model type", func(m *model.Model) { m.ModelType = "cobol" }, "modelType"},
		{"one-char modeler", func(m *model.Model) { m.Modeler = "x" }, "modeler"},
		{"relative url", func(m *model.Model) { m.ExternalURL = "not-a-url" }, "externalUrl"},
		{"bad version", func(m *model.Model) { m.ModelVersionName = "v1" }, "modelVersionName"},
		{"unknown taxonomy tag", func(m *model.Model) { m.ADLACRE = "bogus" }, "ADL_ACRE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validModel()
			tc.mutate(m)
			errs := CreateModel(m)
			require.NotEmpty(t, errs)
			assert.Contains(t, fieldsOf(errs), tc.field)
		})
	}
}

func TestUpdateModelIgnoresAbsentFields(t *testing.T) {
	require.Empty(t, UpdateModel(model.ModelPatch{}))
}

func TestUpdateModelMetricBounds(t *testing.T) {
	errs := UpdateModel(model.ModelPatch{Accuracy: ptrs.Ptr(1.5)})
	require.Len(t, errs, 1)
	assert.Equal(t, "accuracy", errs[0].Field)

	require.Empty(t, UpdateModel(model.ModelPatch{Accuracy: ptrs.Ptr(0.95)}))
	require.Empty(t, UpdateModel(model.ModelPatch{Accuracy: ptrs.Ptr(0.0)}))
	require.NotEmpty(t, UpdateModel(model.ModelPatch{RocAuc: ptrs.Ptr(-0.1)}))
}

func TestUpdateModelEnums(t *testing.T) {
	bad := model.Status("retired")
	errs := UpdateModel(model.ModelPatch{Status: &bad})
	require.Len(t, errs, 1)
	assert.Equal(t, "status", errs[0].Field)

	good := model.StatusProduction
	require.Empty(t, UpdateModel(model.ModelPatch{Status: &good}))

	badRisk := model.RiskLevel("extreme")
	require.NotEmpty(t, UpdateModel(model.ModelPatch{RiskLevel: &badRisk}))
}

func TestUploadRules(t *testing.T) {
	valid := ArtifactUpload{
		FileName:     "model.pkl",
		FileType:     "application/octet-stream",
		Size:         1024,
		ArtifactType: "pkl",
	}
	require.Empty(t, Upload(valid))

	oversized := valid
	oversized.Size = 60 * 1024 * 1024
	errs := Upload(oversized)
	require.Len(t, errs, 1)
	assert.Equal(t, "file", errs[0].Field)

	badType := valid
	badType.FileType = "application/zip"
	require.NotEmpty(t, Upload(badType))

	badCategory := valid
	badCategory.ArtifactType = "weights"
	require.NotEmpty(t, Upload(badCategory))

	noName := valid
	noName.FileName = ""
	require.NotEmpty(t, Upload(noName))
}

func TestImportRules(t *testing.T) {
	valid := TrackingImport{
		ExperimentID: "3",
		RunID:        "abc123",
		S3Path:       "s3://models/credit/run.pkl",
		ModelName:    "credit-risk-scorer",
		Stage:        "production",
	}
	require.Empty(t, Import(valid))

	missing := valid
	missing.ExperimentID = ""
	missing.ModelName = ""
	require.Len(t, Import(missing), 2)

	badPath := valid
	badPath.S3Path = "http://bucket/key"
	require.NotEmpty(t, Import(badPath))

	badStage := valid
	badStage.Stage = "canary"
	require.NotEmpty(t, Import(badStage))
}
