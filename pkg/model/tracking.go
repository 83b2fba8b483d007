package model

// Experiment is an externally tracked collection of runs. The tracking server
// owns these; no authoritative local copy exists.
type Experiment struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ArtifactLocation string `json:"artifactLocation,omitempty"`
	LifecycleStage   string `json:"lifecycleStage,omitempty"`
}

// Run is one training attempt tracked by the external tracking server.
type Run struct {
	ID           string             `json:"id"`
	ExperimentID string             `json:"experimentId"`
	Status       string             `json:"status"`
	StartTime    int64              `json:"startTime,omitempty"`
	EndTime      int64              `json:"endTime,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
	Params       map[string]string  `json:"parameters"`
	Tags         map[string]string  `json:"tags,omitempty"`
	ArtifactURI  string             `json:"artifactUri,omitempty"`
}

// RunArtifact is a file or directory under a run's artifact root.
type RunArtifact struct {
	Path     string `json:"path"`
	IsDir    bool   `json:"isDir"`
	FileSize int64  `json:"fileSize,omitempty"`
}
