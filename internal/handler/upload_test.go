package handler

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kireshiki/Universalis/internal/model"
	"github.com/kireshiki/Universalis/internal/service"
)

type stubSourceRepo struct {
	sources map[string]*model.TrustedSource
}

func (s *stubSourceRepo) GetByKeyHash(ctx context.Context, keyHash string) (*model.TrustedSource, error) {
	return s.sources[keyHash], nil
}

func (s *stubSourceRepo) IncrementUploadCount(ctx context.Context, keyHash string) error {
	return nil
}

type stubBlacklist struct{}

func (stubBlacklist) Has(ctx context.Context, hash string) (bool, error) { return false, nil }
func (stubBlacklist) Add(ctx context.Context, hash string) error         { return nil }

func newUploadRouter(t *testing.T) *chi.Mux {
	t.Helper()

	sum := sha512.Sum512([]byte("good-key"))
	sources := &stubSourceRepo{sources: map[string]*model.TrustedSource{
		hex.EncodeToString(sum[:]): {APIKeyHash: hex.EncodeToString(sum[:]), Name: "sodium"},
	}}

	upload := service.NewUploadService(sources, stubBlacklist{})

	r := chi.NewRouter()
	r.Post("/upload/{apiKey}", NewUploadHandler(upload).Upload)
	return r
}

func postUpload(t *testing.T, r http.Handler, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/upload/"+apiKey, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUploadUnknownKeyForbidden(t *testing.T) {
	r := newUploadRouter(t)

	rec := postUpload(t, r, "bad-key", `{"uploader_id":"p"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestUploadAuthenticatedOK(t *testing.T) {
	r := newUploadRouter(t)

	rec := postUpload(t, r, "good-key", `{"uploader_id":"p"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
}

func TestUploadMalformedBody(t *testing.T) {
	r := newUploadRouter(t)

	rec := postUpload(t, r, "good-key", `{"uploader_id":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadMissingUploaderID(t *testing.T) {
	r := newUploadRouter(t)

	rec := postUpload(t, r, "good-key", `{"world_id":23}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
