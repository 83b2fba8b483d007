package internal

import (
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/modelgov/modelgov/internal/api"
	"github.com/modelgov/modelgov/internal/authz"
	"github.com/modelgov/modelgov/pkg/validate"
)

type artifactUploadRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Content  string `json:"content"`
}

// uploadArtifact stores an artifact file for a model and records its
// location on the model row. The location is only recorded after the upload
// succeeds, so a failed upload leaves the model untouched.
func (s *Server) uploadArtifact(c echo.Context) error {
	if s.artifacts == nil {
		return errors.New("artifact storage is not configured")
	}

	id := c.Param("id")
	artifactType := c.Param("type")

	var req artifactUploadRequest
	if err := c.Bind(&req); err != nil {
		return api.AsValidationError("malformed artifact payload")
	}

	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		return api.AsValidationError("artifact content must be base64-encoded")
	}

	if errs := validate.Upload(validate.ArtifactUpload{
		FileName:     req.FileName,
		FileType:     req.FileType,
		Size:         int64(len(content)),
		ArtifactType: artifactType,
	}); len(errs) > 0 {
		return api.AsValidationError("%s", errs.Error())
	}

	if _, err := s.authorize(c, authz.EditModels); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := s.store.GetModel(ctx, id); err != nil {
		return translateStoreErr(err, id)
	}

	location, err := s.artifacts.PutArtifact(
		ctx, id, artifactType, req.FileName, req.FileType, content)
	if err != nil {
		return err
	}
	if err := s.store.SetArtifactPath(ctx, id, artifactType, location); err != nil {
		return translateStoreErr(err, id)
	}

	return c.JSON(http.StatusOK, map[string]string{"url": location})
}
