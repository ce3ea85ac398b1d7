package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dreamingfree09/study-portal/internal/store"
)

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func testLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func readerOf(b []byte) io.Reader {
	return bytes.NewReader(b)
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]store.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]store.User{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, u store.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.Email] = u
	return nil
}

func (f *fakeUsers) UserByEmail(_ context.Context, email string) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

// fakeMaterials mirrors the Postgres store's filter and ordering
// semantics in memory.
type fakeMaterials struct {
	mu    sync.Mutex
	items []store.Material
	clock time.Time
}

func newFakeMaterials() *fakeMaterials {
	return &fakeMaterials{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func matchFilter(f store.ListFilter, m store.Material) bool {
	if m.Category != f.Category {
		return false
	}
	if f.Search != "" {
		s := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(m.Title), s) &&
			!strings.Contains(strings.ToLower(m.Subject), s) {
			return false
		}
	}
	for _, c := range []struct{ want, have string }{
		{f.Subject, m.Subject},
		{f.Year, m.Year},
		{f.PaperType, m.PaperType},
	} {
		if c.want != "" && c.want != store.FilterAll && c.have != c.want {
			return false
		}
	}
	return true
}

func (f *fakeMaterials) InsertMaterial(_ context.Context, m store.Material) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.CreatedAt.IsZero() {
		f.clock = f.clock.Add(time.Minute)
		m.CreatedAt = f.clock
	}
	f.items = append(f.items, m)
	return nil
}

func (f *fakeMaterials) MaterialByID(_ context.Context, id uuid.UUID) (store.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.items {
		if m.ID == id {
			return m, nil
		}
	}
	return store.Material{}, store.ErrNotFound
}

func (f *fakeMaterials) DeleteMaterial(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.items {
		if m.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeMaterials) CountMaterials(_ context.Context, filter store.ListFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.items {
		if matchFilter(filter, m) {
			n++
		}
	}
	return n, nil
}

func (f *fakeMaterials) ListMaterials(_ context.Context, filter store.ListFilter, offset, limit int) ([]store.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []store.Material
	for _, m := range f.items {
		if matchFilter(filter, m) {
			out = append(out, m)
		}
	}

	if filter.Category == store.CategoryQuestionPaper {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Year != out[j].Year {
				return out[i].Year > out[j].Year
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	if limit <= 0 {
		return out, nil
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (f *fakeMaterials) RecentMaterials(_ context.Context, n int) ([]store.Material, error) {
	f.mu.Lock()
	items := make([]store.Material, len(f.items))
	copy(items, f.items)
	f.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func (f *fakeMaterials) CountByCategory(_ context.Context, category string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.items {
		if m.Category == category {
			n++
		}
	}
	return n, nil
}

func (f *fakeMaterials) distinct(category string, pick func(store.Material) string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, m := range f.items {
		v := pick(m)
		if m.Category != category || v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (f *fakeMaterials) DistinctSubjects(_ context.Context, category string) ([]string, error) {
	return f.distinct(category, func(m store.Material) string { return m.Subject }), nil
}

func (f *fakeMaterials) DistinctYears(_ context.Context, category string) ([]string, error) {
	return f.distinct(category, func(m store.Material) string { return m.Year }), nil
}

func (f *fakeMaterials) IncrementDownloads(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Downloads++
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{blobs: map[string][]byte{}}
}

func (f *fakeBlobs) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = b
	return nil
}

func (f *fakeBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeBlobs) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	return nil
}

func (f *fakeBlobs) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

type testEnv struct {
	cfg       Config
	handler   http.Handler
	users     *fakeUsers
	materials *fakeMaterials
	blobs     *fakeBlobs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := newFakeUsers()
	materials := newFakeMaterials()
	blobs := newFakeBlobs()
	cfg := Config{
		Log:            testLogger(),
		Sessions:       Sessions{Secret: "test-secret"},
		Users:          users,
		Materials:      materials,
		Blobs:          blobs,
		MaxUploadBytes: 20 << 20,
	}
	return &testEnv{
		cfg:       cfg,
		handler:   cfg.router(),
		users:     users,
		materials: materials,
		blobs:     blobs,
	}
}

// sessionCookie mints a valid cookie for the given role.
func (e *testEnv) sessionCookie(t *testing.T, role string) *http.Cookie {
	t.Helper()
	tok, _, err := e.cfg.Sessions.makeToken(uuid.New().String(), "Test User", role)
	if err != nil {
		t.Fatalf("makeToken: %v", err)
	}
	return &http.Cookie{Name: e.cfg.Sessions.cookieName(), Value: tok}
}
