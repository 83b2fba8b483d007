package internal

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/modelgov/modelgov/internal/api"
	"github.com/modelgov/modelgov/internal/authz"
	"github.com/modelgov/modelgov/internal/tracking"
	"github.com/modelgov/modelgov/pkg/model"
	"github.com/modelgov/modelgov/pkg/ptrs"
	"github.com/modelgov/modelgov/pkg/validate"
)

func (s *Server) trackingClient() (*tracking.Client, error) {
	if s.tracking == nil {
		return nil, errors.New("experiment tracking server is not configured")
	}
	return s.tracking, nil
}

func (s *Server) listExperiments(c echo.Context) error {
	client, err := s.trackingClient()
	if err != nil {
		return err
	}
	experiments, err := client.ListExperiments(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"experiments": experiments})
}

func (s *Server) listRuns(c echo.Context) error {
	client, err := s.trackingClient()
	if err != nil {
		return err
	}
	limit, err := intQueryParam(c, "limit", 0)
	if err != nil {
		return err
	}
	runs, err := client.ListRuns(c.Request().Context(), tracking.ListRunsRequest{
		ExperimentID: c.Param("id"),
		Limit:        limit,
		PageToken:    c.QueryParam("pageToken"),
		OrderBy:      c.QueryParam("orderBy"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) getRun(c echo.Context) error {
	client, err := s.trackingClient()
	if err != nil {
		return err
	}
	run, err := client.GetRun(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) listRunArtifacts(c echo.Context) error {
	client, err := s.trackingClient()
	if err != nil {
		return err
	}
	artifacts, err := client.ListArtifacts(
		c.Request().Context(), c.Param("id"), c.QueryParam("path"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"artifacts": artifacts})
}

var importStageStatus = map[string]model.Status{
	"staging":    model.StatusTesting,
	"production": model.StatusProduction,
	"archived":   model.StatusDeprecated,
}

// importRun registers a tracked run as a governed model, carrying over its
// fraction-valued metrics and parameters.
func (s *Server) importRun(c echo.Context) error {
	client, err := s.trackingClient()
	if err != nil {
		return err
	}

	var req validate.TrackingImport
	if err := c.Bind(&req); err != nil {
		return api.AsValidationError("malformed import payload")
	}
	if req.RunID == "" {
		return api.AsValidationError("run ID is required")
	}
	if errs := validate.Import(req); len(errs) > 0 {
		return api.AsValidationError("%s", errs.Error())
	}

	ctx := c.Request().Context()
	run, err := client.GetRun(ctx, req.RunID)
	if err != nil {
		return err
	}

	actor, err := s.authorize(c, authz.EditModels)
	if err != nil {
		return err
	}
	m := modelFromRun(req, run)
	if err := s.store.InsertModel(ctx, m, actor); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// modelFromRun maps a tracked run onto a registry record. Only metrics that
// are fractions survive the import; unbounded metrics (loss values, error
// magnitudes) land on their dedicated fields or are dropped.
func modelFromRun(req validate.TrackingImport, run *model.Run) *model.Model {
	m := &model.Model{
		Name: req.ModelName,
		Description: fmt.Sprintf(
			"imported from tracked run %s of experiment %s", run.ID, req.ExperimentID),
		Algorithm: run.Params["algorithm"],
		ModelType: run.Params["model_type"],
		Function:  run.Params["function"],
		Modeler:   run.Tags["mlflow.user"],
		PklPath:   req.S3Path,
	}
	if status, ok := importStageStatus[req.Stage]; ok {
		m.Status = status
	}

	m.Accuracy = fractionMetric(run, "accuracy")
	m.Precision = fractionMetric(run, "precision")
	m.Recall = fractionMetric(run, "recall")
	m.F1Score = fractionMetric(run, "f1_score")
	m.RocAuc = fractionMetric(run, "roc_auc")
	if v, ok := run.Metrics["mse"]; ok {
		m.MSE = ptrs.Ptr(v)
	}
	if v, ok := run.Metrics["rmse"]; ok {
		m.RMSE = ptrs.Ptr(v)
	}
	if v, ok := run.Metrics["mae"]; ok {
		m.MAE = ptrs.Ptr(v)
	}
	if v, ok := run.Metrics["r2"]; ok {
		m.R2Score = ptrs.Ptr(v)
	}
	return m
}

func fractionMetric(run *model.Run, key string) *float64 {
	v, ok := run.Metrics[key]
	if !ok || v < 0 || v > 1 {
		return nil
	}
	return ptrs.Ptr(v)
}
