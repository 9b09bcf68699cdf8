package model

import "time"

// ProjectStatus represents the current state of a processing run.
type ProjectStatus string

const (
	ProjectStatusQueued     ProjectStatus = "queued"
	ProjectStatusProcessing ProjectStatus = "processing"
	ProjectStatusComplete   ProjectStatus = "complete"
	ProjectStatusFailed     ProjectStatus = "failed"
)

// FileKind tells the pipeline which decoder to use for a project file.
type FileKind string

const (
	FileKindWorkbook FileKind = "workbook" // spreadsheet -> cell grids
	FileKindText     FileKind = "text"     // extracted report text
)

// ProjectFile is one uploaded document belonging to a project.
type ProjectFile struct {
	ID        string   `json:"id"`
	ProjectID string   `json:"project_id"`
	Path      string   `json:"path"`
	Kind      FileKind `json:"kind"`
}

// Project is one company-profile processing job.
type Project struct {
	ID          string          `json:"id"`
	CompanyName string          `json:"company_name"`
	CompanyURL  string          `json:"company_url,omitempty"`
	Status      ProjectStatus   `json:"status"`
	Files       []ProjectFile   `json:"files,omitempty"`
	Profile     *CompanyProfile `json:"profile,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
