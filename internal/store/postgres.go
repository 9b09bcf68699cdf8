package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/teaser-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_project":      `INSERT INTO projects (id, company_name, company_url, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"update_status":       `UPDATE projects SET status = $1, updated_at = $2 WHERE id = $3`,
	"save_profile":        `UPDATE projects SET profile = $1, status = $2, updated_at = $3 WHERE id = $4`,
	"get_project":         `SELECT id, company_name, company_url, status, profile, error, created_at, updated_at FROM projects WHERE id = $1`,
	"insert_file":         `INSERT INTO project_files (id, project_id, path, kind) VALUES ($1, $2, $3, $4)`,
	"get_cached_context":  `SELECT context FROM context_cache WHERE company_url = $1 AND expires_at > now() ORDER BY crawled_at DESC LIMIT 1`,
	"set_cached_context":  `INSERT INTO context_cache (id, company_url, context, crawled_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
	"delete_expired":      `DELETE FROM context_cache WHERE expires_at <= now()`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_name TEXT NOT NULL,
	company_url  TEXT,
	status       TEXT NOT NULL DEFAULT 'queued',
	profile      JSONB,
	error        TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS project_files (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	project_id TEXT NOT NULL REFERENCES projects(id),
	path       TEXT NOT NULL,
	kind       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS context_cache (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_url TEXT NOT NULL,
	context     JSONB NOT NULL,
	crawled_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);
CREATE INDEX IF NOT EXISTS idx_project_files_project_id ON project_files(project_id);
CREATE INDEX IF NOT EXISTS idx_context_cache_company_url ON context_cache(company_url);
CREATE INDEX IF NOT EXISTS idx_context_cache_expires_at ON context_cache(expires_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, companyName, companyURL string) (*model.Project, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO projects (id, company_name, company_url, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, companyName, companyURL, string(model.ProjectStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert project")
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

func (s *PostgresStore) AddFile(ctx context.Context, projectID, path string, kind model.FileKind) (*model.ProjectFile, error) {
	id := uuid.New().String()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO project_files (id, project_id, path, kind) VALUES ($1, $2, $3, $4)`,
		id, projectID, path, string(kind),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert file for project %s", projectID)
	}

	return &model.ProjectFile{ID: id, ProjectID: projectID, Path: path, Kind: kind}, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	var p model.Project
	var companyURL, errMsg *string
	var profileJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, company_name, company_url, status, profile, error, created_at, updated_at FROM projects WHERE id = $1`,
		projectID,
	).Scan(&p.ID, &p.CompanyName, &companyURL, &p.Status, &profileJSON, &errMsg, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("project not found: %s", projectID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get project %s", projectID)
	}

	if companyURL != nil {
		p.CompanyURL = *companyURL
	}
	if errMsg != nil {
		p.Error = *errMsg
	}
	if len(profileJSON) > 0 {
		p.Profile = &model.CompanyProfile{}
		if err := json.Unmarshal(profileJSON, p.Profile); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal profile")
		}
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, path, kind FROM project_files WHERE project_id = $1 ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list files for project %s", projectID)
	}
	defer rows.Close()

	for rows.Next() {
		var f model.ProjectFile
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Kind); err != nil {
			return nil, eris.Wrap(err, "postgres: scan project file")
		}
		p.Files = append(p.Files, f)
	}
	return &p, eris.Wrap(rows.Err(), "postgres: iterate project files")
}

func (s *PostgresStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error) {
	query := `SELECT id, company_name, company_url, status, profile, error, created_at, updated_at FROM projects WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		var companyURL, errMsg *string
		var profileJSON []byte

		if err := rows.Scan(&p.ID, &p.CompanyName, &companyURL, &p.Status, &profileJSON, &errMsg, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan project")
		}
		if companyURL != nil {
			p.CompanyURL = *companyURL
		}
		if errMsg != nil {
			p.Error = *errMsg
		}
		if len(profileJSON) > 0 {
			p.Profile = &model.CompanyProfile{}
			if err := json.Unmarshal(profileJSON, p.Profile); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal profile")
			}
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "postgres: list projects iterate")
}

func (s *PostgresStore) UpdateProjectStatus(ctx context.Context, projectID string, status model.ProjectStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), projectID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update project status %s", projectID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("project not found: %s", projectID)
	}
	return nil
}

func (s *PostgresStore) FailProject(ctx context.Context, projectID, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.ProjectStatusFailed), errMsg, time.Now().UTC(), projectID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail project %s", projectID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("project not found: %s", projectID)
	}
	return nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, projectID string, profile *model.CompanyProfile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal profile")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET profile = $1, status = $2, updated_at = $3 WHERE id = $4`,
		profileJSON, string(model.ProjectStatusComplete), time.Now().UTC(), projectID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save profile %s", projectID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("project not found: %s", projectID)
	}
	return nil
}

func (s *PostgresStore) GetCachedContext(ctx context.Context, companyURL string) (*model.PublicContext, error) {
	var contextJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT context FROM context_cache WHERE company_url = $1 AND expires_at > now() ORDER BY crawled_at DESC LIMIT 1`,
		companyURL,
	).Scan(&contextJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached context")
	}

	var pc model.PublicContext
	if err := json.Unmarshal(contextJSON, &pc); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached context")
	}
	return &pc, nil
}

func (s *PostgresStore) SetCachedContext(ctx context.Context, companyURL string, pc *model.PublicContext, ttl time.Duration) error {
	contextJSON, err := json.Marshal(pc)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal context")
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO context_cache (id, company_url, context, crawled_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), companyURL, contextJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached context")
}

func (s *PostgresStore) DeleteExpiredContexts(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM context_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired contexts")
	}
	return int(tag.RowsAffected()), nil
}
