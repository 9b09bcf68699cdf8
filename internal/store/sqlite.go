package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/teaser-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id           TEXT PRIMARY KEY,
	company_name TEXT NOT NULL,
	company_url  TEXT,
	status       TEXT NOT NULL DEFAULT 'queued',
	profile      TEXT,
	error        TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS project_files (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id),
	path       TEXT NOT NULL,
	kind       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS context_cache (
	id          TEXT PRIMARY KEY,
	company_url TEXT NOT NULL,
	context     TEXT NOT NULL,
	crawled_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);
CREATE INDEX IF NOT EXISTS idx_project_files_project_id ON project_files(project_id);
CREATE INDEX IF NOT EXISTS idx_context_cache_company_url ON context_cache(company_url);
CREATE INDEX IF NOT EXISTS idx_context_cache_expires_at ON context_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateProject(ctx context.Context, companyName, companyURL string) (*model.Project, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, company_name, company_url, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, companyName, companyURL, string(model.ProjectStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert project")
	}

	return &model.Project{
		ID:          id,
		CompanyName: companyName,
		CompanyURL:  companyURL,
		Status:      model.ProjectStatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *SQLiteStore) AddFile(ctx context.Context, projectID, path string, kind model.FileKind) (*model.ProjectFile, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO project_files (id, project_id, path, kind) VALUES (?, ?, ?, ?)`,
		id, projectID, path, string(kind),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert file for project %s", projectID)
	}

	return &model.ProjectFile{ID: id, ProjectID: projectID, Path: path, Kind: kind}, nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_name, company_url, status, profile, error, created_at, updated_at
		 FROM projects WHERE id = ?`,
		projectID,
	)

	p, err := scanProject(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, path, kind FROM project_files WHERE project_id = ? ORDER BY rowid`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list files for project %s", projectID)
	}
	defer rows.Close()

	for rows.Next() {
		var f model.ProjectFile
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Kind); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan project file")
		}
		p.Files = append(p.Files, f)
	}
	return p, eris.Wrap(rows.Err(), "sqlite: iterate project files")
}

func (s *SQLiteStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error) {
	query := `SELECT id, company_name, company_url, status, profile, error, created_at, updated_at
		FROM projects WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, eris.Wrap(rows.Err(), "sqlite: list projects iterate")
}

func (s *SQLiteStore) UpdateProjectStatus(ctx context.Context, projectID string, status model.ProjectStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), projectID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update project status %s", projectID)
	}
	return checkRowsAffected(res, "project", projectID)
}

func (s *SQLiteStore) FailProject(ctx context.Context, projectID, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.ProjectStatusFailed), errMsg, time.Now().UTC(), projectID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail project %s", projectID)
	}
	return checkRowsAffected(res, "project", projectID)
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, projectID string, profile *model.CompanyProfile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET profile = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(profileJSON), string(model.ProjectStatusComplete), time.Now().UTC(), projectID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save profile %s", projectID)
	}
	return checkRowsAffected(res, "project", projectID)
}

func (s *SQLiteStore) GetCachedContext(ctx context.Context, companyURL string) (*model.PublicContext, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT context FROM context_cache
		 WHERE company_url = ? AND expires_at > datetime('now')
		 ORDER BY crawled_at DESC LIMIT 1`,
		companyURL,
	)

	var contextJSON string
	err := row.Scan(&contextJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached context")
	}

	var pc model.PublicContext
	if err := json.Unmarshal([]byte(contextJSON), &pc); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached context")
	}
	return &pc, nil
}

func (s *SQLiteStore) SetCachedContext(ctx context.Context, companyURL string, pc *model.PublicContext, ttl time.Duration) error {
	id := uuid.New().String()
	now := time.Now().UTC()

	contextJSON, err := json.Marshal(pc)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal context")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO context_cache (id, company_url, context, crawled_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		id, companyURL, string(contextJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached context")
}

func (s *SQLiteStore) DeleteExpiredContexts(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM context_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired contexts")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProject(row scannable) (*model.Project, error) {
	var p model.Project
	var companyURL, profileJSON, errMsg sql.NullString

	err := row.Scan(&p.ID, &p.CompanyName, &companyURL, &p.Status, &profileJSON, &errMsg, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("project not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan project")
	}

	p.CompanyURL = companyURL.String
	p.Error = errMsg.String
	if profileJSON.Valid {
		p.Profile = &model.CompanyProfile{}
		if err := json.Unmarshal([]byte(profileJSON.String), p.Profile); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal profile")
		}
	}
	return &p, nil
}
