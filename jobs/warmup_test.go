package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-front/internal/catalog"
	"github.com/meridian-erp/meridian-front/internal/erp"
)

func newWarmupJob(t *testing.T, upstream http.Handler) (*CatalogWarmupJob, *catalog.Cache) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client := erp.NewClient(srv.URL, time.Second, nil)
	cache := catalog.NewCache(nil, time.Minute)
	catalog.RegisterLoaders(cache, client)

	return &CatalogWarmupJob{
		Cache:    cache,
		Client:   client,
		Username: "worker",
		Password: "secret",
		Logger:   slog.New(slog.DiscardHandler),
	}, cache
}

func TestWarmupRefreshesSelectedKeys(t *testing.T) {
	var productHits int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(erp.Token{AccessToken: "tok", TokenType: "bearer"})
	})
	mux.HandleFunc("GET /inventory/products", func(w http.ResponseWriter, r *http.Request) {
		productHits++
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]erp.Product{{ID: 1, Name: "Widget"}})
	})
	job, cache := newWarmupJob(t, mux)

	task, err := NewCatalogWarmupTask(CatalogWarmupPayload{Keys: []string{catalog.KeyProducts}})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, productHits)

	// The warmed entry serves without another upstream round trip.
	var products []erp.Product
	require.NoError(t, cache.Fetch(erp.ContextWithToken(context.Background(), "tok"), catalog.KeyProducts, &products))
	assert.Equal(t, 1, productHits)
	require.Len(t, products, 1)
}

func TestWarmupMalformedPayloadSkipsRetry(t *testing.T) {
	job, _ := newWarmupJob(t, http.NewServeMux())
	err := job.Handle(context.Background(), asynq.NewTask(TaskCatalogWarmup, []byte("{not json")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestWarmupFailsWhenEveryRefreshFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(erp.Token{AccessToken: "tok", TokenType: "bearer"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusBadGateway)
	})
	job, _ := newWarmupJob(t, mux)

	task, err := NewCatalogWarmupTask(CatalogWarmupPayload{Keys: []string{catalog.KeyProducts, catalog.KeySummary}})
	require.NoError(t, err)
	assert.Error(t, job.Handle(context.Background(), task))
}
