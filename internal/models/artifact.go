package models

// TaskArtifacts lists the files a task execution uploaded.
type TaskArtifacts struct {
	TaskID         string     `json:"task_id"`
	TaskName       string     `json:"task_name"`
	BuildVariant   string     `json:"build_variant"`
	Execution      int        `json:"execution"`
	Filter         string     `json:"artifact_filter,omitempty"`
	Artifacts      []Artifact `json:"artifacts"`
	ArtifactCount  int        `json:"artifact_count"`
	TotalArtifacts int        `json:"total_artifacts"`
	// Available names every artifact when the filter matched none of them.
	Available []string `json:"available_artifacts,omitempty"`
}

// Artifact is one uploaded file. Group is the execution task that uploaded it
// when the task is a display task.
type Artifact struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Group string `json:"group,omitempty"`
}
