// Package tracking is a read-only client for an MLflow-compatible experiment
// tracking server. The tracking server owns experiments and runs; nothing is
// cached locally.
package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/modelgov/modelgov/pkg/model"
)

const requestTimeout = 30 * time.Second

// Client talks to one tracking server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the tracking server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type experimentsResponse struct {
	Experiments []struct {
		ExperimentID     string `json:"experiment_id"`
		Name             string `json:"name"`
		ArtifactLocation string `json:"artifact_location"`
		LifecycleStage   string `json:"lifecycle_stage"`
	} `json:"experiments"`
}

// ListExperiments returns the experiments known to the tracking server.
func (c *Client) ListExperiments(ctx context.Context) ([]model.Experiment, error) {
	var resp experimentsResponse
	if err := c.get(ctx, "/api/2.0/mlflow/experiments/list", nil, &resp); err != nil {
		return nil, err
	}
	experiments := make([]model.Experiment, 0, len(resp.Experiments))
	for _, e := range resp.Experiments {
		experiments = append(experiments, model.Experiment{
			ID:               e.ExperimentID,
			Name:             e.Name,
			ArtifactLocation: e.ArtifactLocation,
			LifecycleStage:   e.LifecycleStage,
		})
	}
	return experiments, nil
}

type runPayload struct {
	Info struct {
		RunID        string `json:"run_id"`
		ExperimentID string `json:"experiment_id"`
		Status       string `json:"status"`
		StartTime    int64  `json:"start_time"`
		EndTime      int64  `json:"end_time"`
		ArtifactURI  string `json:"artifact_uri"`
	} `json:"info"`
	Data struct {
		Metrics []struct {
			Key   string  `json:"key"`
			Value float64 `json:"value"`
		} `json:"metrics"`
		Params []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"params"`
		Tags []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"tags"`
	} `json:"data"`
}

func (p runPayload) toRun() model.Run {
	run := model.Run{
		ID:           p.Info.RunID,
		ExperimentID: p.Info.ExperimentID,
		Status:       p.Info.Status,
		StartTime:    p.Info.StartTime,
		EndTime:      p.Info.EndTime,
		ArtifactURI:  p.Info.ArtifactURI,
		Metrics:      map[string]float64{},
		Params:       map[string]string{},
		Tags:         map[string]string{},
	}
	for _, m := range p.Data.Metrics {
		run.Metrics[m.Key] = m.Value
	}
	for _, param := range p.Data.Params {
		run.Params[param.Key] = param.Value
	}
	for _, tag := range p.Data.Tags {
		run.Tags[tag.Key] = tag.Value
	}
	return run
}

// ListRunsRequest carries search parameters for the runs of an experiment.
type ListRunsRequest struct {
	ExperimentID string
	Limit        int
	PageToken    string
	OrderBy      string
}

// ListRuns searches the runs of one experiment.
func (c *Client) ListRuns(ctx context.Context, req ListRunsRequest) ([]model.Run, error) {
	body := map[string]interface{}{
		"experiment_ids": []string{req.ExperimentID},
	}
	if req.Limit > 0 {
		body["max_results"] = req.Limit
	}
	if req.PageToken != "" {
		body["page_token"] = req.PageToken
	}
	if req.OrderBy != "" {
		body["order_by"] = []string{req.OrderBy}
	}

	var resp struct {
		Runs []runPayload `json:"runs"`
	}
	if err := c.post(ctx, "/api/2.0/mlflow/runs/search", body, &resp); err != nil {
		return nil, err
	}
	runs := make([]model.Run, 0, len(resp.Runs))
	for _, r := range resp.Runs {
		runs = append(runs, r.toRun())
	}
	return runs, nil
}

// GetRun fetches one run by id.
func (c *Client) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var resp struct {
		Run runPayload `json:"run"`
	}
	params := url.Values{"run_id": []string{runID}}
	if err := c.get(ctx, "/api/2.0/mlflow/runs/get", params, &resp); err != nil {
		return nil, err
	}
	run := resp.Run.toRun()
	return &run, nil
}

// ListArtifacts lists the files under a run's artifact root.
func (c *Client) ListArtifacts(
	ctx context.Context, runID, path string,
) ([]model.RunArtifact, error) {
	params := url.Values{"run_id": []string{runID}}
	if path != "" {
		params.Set("path", path)
	}
	var resp struct {
		Files []struct {
			Path     string `json:"path"`
			IsDir    bool   `json:"is_dir"`
			FileSize string `json:"file_size"`
		} `json:"files"`
	}
	if err := c.get(ctx, "/api/2.0/mlflow/artifacts/list", params, &resp); err != nil {
		return nil, err
	}
	artifacts := make([]model.RunArtifact, 0, len(resp.Files))
	for _, f := range resp.Files {
		size, _ := strconv.ParseInt(f.FileSize, 10, 64)
		artifacts = append(artifacts, model.RunArtifact{
			Path:     f.Path,
			IsDir:    f.IsDir,
			FileSize: size,
		})
	}
	return artifacts, nil
}

func (c *Client) get(
	ctx context.Context, path string, params url.Values, out interface{},
) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "error building tracking request")
	}
	return c.do(req, out)
}

func (c *Client) post(
	ctx context.Context, path string, body interface{}, out interface{},
) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "error encoding tracking request")
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "error building tracking request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "error reaching tracking server")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("tracking server returned %d: %s",
			resp.StatusCode, fmt.Sprintf("%.200s", string(body)))
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out),
		"error decoding tracking response")
}
