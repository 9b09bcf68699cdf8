// Package store persists projects, their uploaded files, and finished
// profiles. Two implementations exist: SQLite for single-machine use and
// Postgres for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/sells-group/teaser-cli/internal/model"
)

// ProjectFilter specifies criteria for listing projects.
type ProjectFilter struct {
	Status model.ProjectStatus `json:"status,omitempty"`
	Limit  int                 `json:"limit,omitempty"`
	Offset int                 `json:"offset,omitempty"`
}

// Store defines the persistence interface for the profile pipeline.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, companyName, companyURL string) (*model.Project, error)
	AddFile(ctx context.Context, projectID, path string, kind model.FileKind) (*model.ProjectFile, error)
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error)
	UpdateProjectStatus(ctx context.Context, projectID string, status model.ProjectStatus) error
	FailProject(ctx context.Context, projectID, errMsg string) error
	SaveProfile(ctx context.Context, projectID string, profile *model.CompanyProfile) error

	// Public-context cache
	GetCachedContext(ctx context.Context, companyURL string) (*model.PublicContext, error)
	SetCachedContext(ctx context.Context, companyURL string, pc *model.PublicContext, ttl time.Duration) error
	DeleteExpiredContexts(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
