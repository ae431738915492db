package domain

// RunState tracks a single scheduled run through the pipeline.
type RunState string

const (
	RunPending    RunState = "PENDING"
	RunExtracting RunState = "EXTRACTING"
	RunExtracted  RunState = "EXTRACTED"
	RunLoading    RunState = "LOADING"
	RunLoaded     RunState = "LOADED"
	RunFailed     RunState = "FAILED"
)

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	return s == RunLoaded || s == RunFailed
}

// Stage names the pipeline stage a failure originated in.
type Stage string

const (
	StageConfig    Stage = "config"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageHandoff   Stage = "handoff"
	StageLoad      Stage = "load"
)
