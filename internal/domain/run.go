package domain

import "time"

// LoadResult é o resultado do carregamento: o conjunto e de onde ele veio
type LoadResult struct {
	Dataset     *Dataset
	Source      string
	Fingerprint string
	RawBytes    []byte `json:"-"`
}

// RunSummary descreve uma execução completa do pipeline
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Source       string        `json:"source"`
	Fingerprint  string        `json:"fingerprint"`
	LoadedRows   int           `json:"loaded_rows"`
	CleanedRows  int           `json:"cleaned_rows"`
	Countries    []string      `json:"countries"`
	FirstDate    time.Time     `json:"first_date"`
	LastDate     time.Time     `json:"last_date"`
	MetricSeries int           `json:"metric_series"`
	Artifacts    []Figure      `json:"artifacts"`
	Published    []string      `json:"published,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  time.Time     `json:"completed_at"`
	Duration     time.Duration `json:"duration_ns"`
}
