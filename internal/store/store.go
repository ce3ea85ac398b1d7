// Package store holds the portal's domain records and the persistence
// interfaces handlers depend on. Concrete implementations live alongside:
// Postgres for metadata, MinIO for blobs. Handlers receive these as
// explicit dependencies so tests can swap in fakes.
package store

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// Material categories. Each carries a different required-field set:
// question papers additionally have a year and a paper type.
const (
	CategoryStudyMaterial = "study_material"
	CategoryQuestionPaper = "question_paper"
)

// FilterAll is the sentinel a filter control sends when no value is
// selected. It means the same as an empty string: no constraint.
const FilterAll = "All"

// ErrNotFound is returned when a record or blob does not exist.
var ErrNotFound = errors.New("not found")

// ValidCategory reports whether c is one of the two recognized categories.
func ValidCategory(c string) bool {
	return c == CategoryStudyMaterial || c == CategoryQuestionPaper
}

// User is an account record. Users are created at registration and never
// updated or deleted afterwards.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	College      string    `json:"college"`
	Branch       string    `json:"branch"`
	Year         string    `json:"year"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Material is one uploaded document plus its metadata. BlobKey references
// the stored PDF in the blob store; Downloads only ever increases.
type Material struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	Category  string    `json:"category"`
	Year      string    `json:"year,omitempty"`
	PaperType string    `json:"paper_type,omitempty"`
	Downloads int64     `json:"downloads"`
	BlobKey   string    `json:"-"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ListFilter selects materials. Category is always set; the rest are
// optional. Search matches Title or Subject as a case-insensitive
// substring. Subject, Year and PaperType add equality constraints unless
// empty or FilterAll. All constraints combine with AND; the two-field
// search is OR'd internally.
type ListFilter struct {
	Category  string
	Search    string
	Subject   string
	Year      string
	PaperType string
}

// UserStore persists account records.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	UserByEmail(ctx context.Context, email string) (User, error)
}

// MaterialStore persists material metadata.
//
// ListMaterials orders question papers by year descending and everything
// else by recency. A limit <= 0 means no pagination.
type MaterialStore interface {
	InsertMaterial(ctx context.Context, m Material) error
	MaterialByID(ctx context.Context, id uuid.UUID) (Material, error)
	DeleteMaterial(ctx context.Context, id uuid.UUID) error
	CountMaterials(ctx context.Context, f ListFilter) (int, error)
	ListMaterials(ctx context.Context, f ListFilter, offset, limit int) ([]Material, error)
	RecentMaterials(ctx context.Context, n int) ([]Material, error)
	CountByCategory(ctx context.Context, category string) (int, error)
	DistinctSubjects(ctx context.Context, category string) ([]string, error)
	DistinctYears(ctx context.Context, category string) ([]string, error)
	// IncrementDownloads bumps the counter by exactly one as a single
	// statement at the store, not a read-modify-write here.
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
}

// BlobStore holds the PDF bytes, keyed by an opaque object key.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// NewBlobKey returns a fresh, non-guessable object key for an upload.
func NewBlobKey() string {
	return "uploads/" + uuid.New().String()
}
