package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamingfree09/study-portal/internal/store"
)

func seedMaterial(t *testing.T, env *testEnv, m store.Material, content []byte) store.Material {
	t.Helper()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.BlobKey == "" {
		m.BlobKey = store.NewBlobKey()
	}
	if content != nil {
		require.NoError(t, env.blobs.Put(context.Background(), m.BlobKey, readerOf(content), int64(len(content)), pdfContentType))
	}
	require.NoError(t, env.materials.InsertMaterial(context.Background(), m))
	return m
}

func TestServeIncrementsCounterOncePerFetch(t *testing.T) {
	env := newTestEnv(t)
	content := []byte("%PDF-1.4 body bytes")
	m := seedMaterial(t, env, store.Material{
		Title:    "Calculus Notes",
		Subject:  "Math",
		Category: store.CategoryStudyMaterial,
		FileName: "calculus.pdf",
	}, content)

	cookie := env.sessionCookie(t, "user")

	fetch := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/material/"+m.ID.String(), nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		return w
	}

	w := fetch()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pdfContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, content, w.Body.Bytes(), "served bytes identical to the upload")

	got, err := env.materials.MaterialByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Downloads)

	fetch()
	got, err = env.materials.MaterialByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Downloads)
}

func TestPreviewDoesNotIncrement(t *testing.T) {
	env := newTestEnv(t)
	m := seedMaterial(t, env, store.Material{
		Title:    "DSA End Sem",
		Subject:  "Data Structures",
		Category: store.CategoryQuestionPaper,
		Year:     "2023",
		FileName: "dsa.pdf",
	}, []byte("%PDF"))

	req := httptest.NewRequest(http.MethodGet, "/preview/"+m.ID.String(), nil)
	req.AddCookie(env.sessionCookie(t, "user"))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp previewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DSA End Sem", resp.Title)
	assert.Equal(t, "Data Structures", resp.Subject)

	got, err := env.materials.MaterialByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Downloads, "preview must not count a download")
}

func TestServeUnknownID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/material/"+uuid.New().String(), nil)
	req.AddCookie(env.sessionCookie(t, "user"))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PDF not found")
}

func TestPreviewUnknownID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/preview/not-a-uuid", nil)
	req.AddCookie(env.sessionCookie(t, "user"))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PDF not found")
}

func TestServeRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	m := seedMaterial(t, env, store.Material{
		Title:    "Notes",
		Subject:  "Math",
		Category: store.CategoryStudyMaterial,
	}, []byte("%PDF"))

	req := httptest.NewRequest(http.MethodGet, "/material/"+m.ID.String(), nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	got, err := env.materials.MaterialByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Downloads, "rejected requests must not count")
}
