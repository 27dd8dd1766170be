package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nuwanwp/billora-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdempotencyRepo struct {
	keys map[string]*entity.IdempotencyKey
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{keys: make(map[string]*entity.IdempotencyKey)}
}

func (f *fakeIdempotencyRepo) storeKey(key string, userID uuid.UUID) string {
	return key + "/" + userID.String()
}

func (f *fakeIdempotencyRepo) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	return f.keys[f.storeKey(key, userID)], nil
}

func (f *fakeIdempotencyRepo) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	f.keys[f.storeKey(ikey.Key, ikey.UserID)] = ikey
	return nil
}

func (f *fakeIdempotencyRepo) DeleteExpired(_ context.Context) error {
	return nil
}

// newIdempotencyRouter mounts the middleware behind a stand-in auth layer
// and counts how many times the wrapped handler actually runs.
func newIdempotencyRouter(repo *fakeIdempotencyRepo, userID uuid.UUID, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/pay",
		func(c *gin.Context) { c.Set("user_id", userID) },
		IdempotencyRequired(IdempotencyConfig{Repo: repo}),
		func(c *gin.Context) {
			*calls++
			c.JSON(http.StatusCreated, gin.H{"success": true, "attempt": *calls})
		},
	)
	return r
}

func TestIdempotencyRequiredRejectsMissingKey(t *testing.T) {
	calls := 0
	r := newIdempotencyRouter(newFakeIdempotencyRepo(), uuid.New(), &calls)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/pay", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, calls)
}

func TestIdempotencyRequiredReplaysForSameUser(t *testing.T) {
	calls := 0
	r := newIdempotencyRouter(newFakeIdempotencyRepo(), uuid.New(), &calls)

	first := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/pay", nil)
	req.Header.Set(IdempotencyKeyHeader, "pay-001")
	r.ServeHTTP(first, req)

	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, 1, calls)

	// The retry replays the cached response without re-running the handler.
	second := httptest.NewRecorder()
	retry := httptest.NewRequest("POST", "/pay", nil)
	retry.Header.Set(IdempotencyKeyHeader, "pay-001")
	r.ServeHTTP(second, retry)

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotencyRequiredKeysAreScopedPerUser(t *testing.T) {
	repo := newFakeIdempotencyRepo()

	aliceCalls := 0
	alice := newIdempotencyRouter(repo, uuid.New(), &aliceCalls)
	bobCalls := 0
	bob := newIdempotencyRouter(repo, uuid.New(), &bobCalls)

	// Both clients picked the same key string. Each must get a real
	// execution, not a replay of the other's response.
	reqA := httptest.NewRequest("POST", "/pay", nil)
	reqA.Header.Set(IdempotencyKeyHeader, "shared-key")
	wA := httptest.NewRecorder()
	alice.ServeHTTP(wA, reqA)

	reqB := httptest.NewRequest("POST", "/pay", nil)
	reqB.Header.Set(IdempotencyKeyHeader, "shared-key")
	wB := httptest.NewRecorder()
	bob.ServeHTTP(wB, reqB)

	assert.Equal(t, http.StatusCreated, wA.Code)
	assert.Equal(t, http.StatusCreated, wB.Code)
	assert.Equal(t, 1, aliceCalls)
	assert.Equal(t, 1, bobCalls)
	assert.Empty(t, wB.Header().Get("X-Idempotency-Replayed"))
}

func TestIdempotencyRequiredDoesNotCacheFailures(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	userID := uuid.New()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	fail := true
	calls := 0
	r.POST("/pay",
		func(c *gin.Context) { c.Set("user_id", userID) },
		IdempotencyRequired(IdempotencyConfig{Repo: repo}),
		func(c *gin.Context) {
			calls++
			if fail {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false})
				return
			}
			c.JSON(http.StatusCreated, gin.H{"success": true})
		},
	)

	req := httptest.NewRequest("POST", "/pay", nil)
	req.Header.Set(IdempotencyKeyHeader, "retry-after-error")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// A failed attempt stays retryable under the same key.
	fail = false
	retry := httptest.NewRequest("POST", "/pay", nil)
	retry.Header.Set(IdempotencyKeyHeader, "retry-after-error")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, retry)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, calls)
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))
}
