package validate

import (
	"fmt"

	"github.com/modelgov/modelgov/pkg/model"
)

var allowedUploadTypes = []string{
	"application/octet-stream", "image/png", "image/jpeg", "application/json",
}

// ArtifactUpload is an upload form payload, checked before any bytes are
// sent to the server.
type ArtifactUpload struct {
	FileName     string `json:"fileName"`
	FileType     string `json:"fileType"`
	Size         int64  `json:"size"`
	ArtifactType string `json:"artifactType"`
}

// Upload validates an artifact upload payload: size bound, MIME type, and
// artifact category membership.
func Upload(u ArtifactUpload) Errors {
	var errs Errors

	if u.FileName == "" {
		errs.add("fileName", "a file name is required")
	}
	if u.Size > MaxUploadBytes {
		errs.add("file", "file size must be less than 50MB")
	}
	if !model.ValidOption(allowedUploadTypes, u.FileType) {
		errs.add("file", "file type must be PKL, PNG, JPEG, or JSON")
	}
	if _, ok := model.ArtifactColumn(u.ArtifactType); !ok {
		errs.add("type", fmt.Sprintf("%q is not a known artifact category", u.ArtifactType))
	}

	return errs
}

// TrackingImport is the payload for importing a tracked run into the
// registry.
type TrackingImport struct {
	ExperimentID string `json:"experimentId"`
	RunID        string `json:"runId"`
	S3Path       string `json:"s3Path"`
	ModelName    string `json:"modelName"`
	Stage        string `json:"stage"`
}

var importStages = []string{"staging", "production", "archived"}

// Import validates a tracking-import payload.
func Import(i TrackingImport) Errors {
	var errs Errors

	if i.ExperimentID == "" {
		errs.add("experimentId", "experiment ID is required")
	}
	if i.ModelName == "" {
		errs.add("modelName", "model name is required")
	}
	if i.S3Path != "" && !s3PathPattern.MatchString(i.S3Path) {
		errs.add("s3Path", "please enter a valid S3 path (s3://bucket/path)")
	}
	if i.Stage != "" && !model.ValidOption(importStages, i.Stage) {
		errs.add("stage", "stage must be one of staging, production, archived")
	}

	return errs
}
