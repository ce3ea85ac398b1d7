package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Postgres implements UserStore and MaterialStore over database/sql.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, college, branch, year, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.College, u.Branch, u.Year, u.Role)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Postgres) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, college, branch, year, role, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.College, &u.Branch, &u.Year, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// buildFilter translates a ListFilter into a WHERE clause and its args.
// Equality constraints AND together; the free-text search ORs a
// case-insensitive substring match over title and subject.
func buildFilter(f ListFilter) (string, []any) {
	where := []string{"category = $1"}
	args := []any{f.Category}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR subject ILIKE $%d)", n, n))
	}

	for _, c := range []struct{ col, val string }{
		{"subject", f.Subject},
		{"year", f.Year},
		{"paper_type", f.PaperType},
	} {
		if c.val == "" || c.val == FilterAll {
			continue
		}
		args = append(args, c.val)
		where = append(where, fmt.Sprintf("%s = $%d", c.col, len(args)))
	}

	return strings.Join(where, " AND "), args
}

const materialColumns = "id, title, subject, category, year, paper_type, downloads, blob_key, file_name, created_at"

func scanMaterials(rows *sql.Rows) ([]Material, error) {
	var out []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Title, &m.Subject, &m.Category, &m.Year,
			&m.PaperType, &m.Downloads, &m.BlobKey, &m.FileName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *Postgres) InsertMaterial(ctx context.Context, m Material) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO materials (id, title, subject, category, year, paper_type, downloads, blob_key, file_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, m.ID, m.Title, m.Subject, m.Category, m.Year, m.PaperType, m.Downloads, m.BlobKey, m.FileName)
	if err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (s *Postgres) MaterialByID(ctx context.Context, id uuid.UUID) (Material, error) {
	var m Material
	err := s.db.QueryRowContext(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE id = $1`, id,
	).Scan(&m.ID, &m.Title, &m.Subject, &m.Category, &m.Year,
		&m.PaperType, &m.Downloads, &m.BlobKey, &m.FileName, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return Material{}, ErrNotFound
	}
	if err != nil {
		return Material{}, fmt.Errorf("select material: %w", err)
	}
	return m, nil
}

func (s *Postgres) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return nil
}

func (s *Postgres) CountMaterials(ctx context.Context, f ListFilter) (int, error) {
	where, args := buildFilter(f)
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM materials WHERE `+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	return n, nil
}

func (s *Postgres) ListMaterials(ctx context.Context, f ListFilter, offset, limit int) ([]Material, error) {
	where, args := buildFilter(f)

	order := "created_at DESC, id"
	if f.Category == CategoryQuestionPaper {
		order = "year DESC, created_at DESC"
	}

	q := `SELECT ` + materialColumns + ` FROM materials WHERE ` + where + ` ORDER BY ` + order
	if limit > 0 {
		if offset < 0 {
			offset = 0
		}
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	return scanMaterials(rows)
}

func (s *Postgres) RecentMaterials(ctx context.Context, n int) ([]Material, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+materialColumns+` FROM materials ORDER BY created_at DESC, id LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("recent materials: %w", err)
	}
	defer rows.Close()
	return scanMaterials(rows)
}

func (s *Postgres) CountByCategory(ctx context.Context, category string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM materials WHERE category = $1`, category).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by category: %w", err)
	}
	return n, nil
}

func (s *Postgres) distinct(ctx context.Context, col, category string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT `+col+` FROM materials WHERE category = $1 AND `+col+` <> '' ORDER BY `+col, category)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", col, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", col, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *Postgres) DistinctSubjects(ctx context.Context, category string) ([]string, error) {
	return s.distinct(ctx, "subject", category)
}

func (s *Postgres) DistinctYears(ctx context.Context, category string) ([]string, error) {
	return s.distinct(ctx, "year", category)
}

func (s *Postgres) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE materials SET downloads = downloads + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment downloads: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
