package internal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/modelgov/modelgov/internal/api"
	"github.com/modelgov/modelgov/internal/authz"
	"github.com/modelgov/modelgov/internal/db"
	"github.com/modelgov/modelgov/pkg/model"
	"github.com/modelgov/modelgov/pkg/validate"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// translateStoreErr maps data-source sentinels into the HTTP failure
// taxonomy. Anything unrecognized stays an internal error.
func translateStoreErr(err error, id string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return api.AsErrNotFound("model %q not found", id)
	case errors.Is(err, db.ErrEmptyUpdate):
		return api.AsValidationError("no fields to update")
	}
	return err
}

func intQueryParam(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, api.AsValidationError("%s must be a positive integer", name)
	}
	return v, nil
}

func (s *Server) listModels(c echo.Context) error {
	page, err := intQueryParam(c, "page", defaultPage)
	if err != nil {
		return err
	}
	limit, err := intQueryParam(c, "limit", defaultLimit)
	if err != nil {
		return err
	}

	models, total, err := s.store.ListModels(c.Request().Context(), db.ListModelsRequest{
		Page:      page,
		Limit:     limit,
		Search:    c.QueryParam("search"),
		Algorithm: c.QueryParam("algorithm"),
		Status:    c.QueryParam("status"),
	})
	if err != nil {
		return err
	}

	p := api.Paginate(total, page, limit)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"models":     models,
		"total":      p.Total,
		"page":       p.Page,
		"totalPages": p.TotalPages,
	})
}

func (s *Server) getModel(c echo.Context) error {
	id := c.Param("id")
	m, err := s.store.GetModel(c.Request().Context(), id)
	if err != nil {
		return translateStoreErr(err, id)
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) createModel(c echo.Context) error {
	var m model.Model
	if err := c.Bind(&m); err != nil {
		return api.AsValidationError("malformed model payload")
	}
	if errs := validateCreate(&m); errs != nil {
		return errs
	}
	actor, err := s.authorize(c, authz.EditModels)
	if err != nil {
		return err
	}
	if err := s.store.InsertModel(c.Request().Context(), &m, actor); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (s *Server) updateModel(c echo.Context) error {
	id := c.Param("id")
	var patch model.ModelPatch
	if err := c.Bind(&patch); err != nil {
		return api.AsValidationError("malformed model payload")
	}
	if errs := validateUpdate(patch); errs != nil {
		return errs
	}
	actor, err := s.authorize(c, authz.EditModels)
	if err != nil {
		return err
	}
	updated, err := s.store.UpdateModel(c.Request().Context(), id, patch, actor)
	if err != nil {
		return translateStoreErr(err, id)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteModel(c echo.Context) error {
	id := c.Param("id")
	if _, err := s.authorize(c, authz.DeleteModels); err != nil {
		return err
	}
	deleted, err := s.store.DeleteModel(c.Request().Context(), id)
	if err != nil {
		return translateStoreErr(err, id)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "model deleted successfully",
		"model":   deleted,
	})
}

func (s *Server) getMetricsSummary(c echo.Context) error {
	m, err := s.store.Metrics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func validateCreate(m *model.Model) error {
	if errs := validate.CreateModel(m); len(errs) > 0 {
		return api.AsValidationError("%s", errs.Error())
	}
	return nil
}

func validateUpdate(p model.ModelPatch) error {
	if errs := validate.UpdateModel(p); len(errs) > 0 {
		return api.AsValidationError("%s", errs.Error())
	}
	return nil
}

// predictModel is a placeholder for a future inference integration; it
// verifies the model exists and answers with a canned prediction.
func (s *Server) predictModel(c echo.Context) error {
	id := c.Param("id")
	if _, err := s.store.GetModel(c.Request().Context(), id); err != nil {
		return translateStoreErr(err, id)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"modelId":    id,
		"prediction": 0.85,
		"confidence": 0.92,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// retrainModel is a placeholder for a future training integration; it
// verifies the model exists and answers with a synthetic job id.
func (s *Server) retrainModel(c echo.Context) error {
	id := c.Param("id")
	if _, err := s.store.GetModel(c.Request().Context(), id); err != nil {
		return translateStoreErr(err, id)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"modelId": id,
		"jobId":   uuid.New().String(),
		"status":  "started",
		"message": "retraining job started",
	})
}
