package storage

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishscope/pkg/models"
	"phishscope/pkg/utils"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore(context.Background(), t.TempDir(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(url string) *models.CollectionResult {
	headers := http.Header{}
	headers.Set("Server", "nginx")
	body := "<html><title>sample</title></html>"
	return &models.CollectionResult{
		URL:         url,
		StatusCode:  200,
		Headers:     headers,
		Body:        body,
		Fingerprint: utils.Fingerprint(url, headers, body),
		CollectedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSaveAndGetResult(t *testing.T) {
	store := newTestStore(t)
	res := sampleResult("https://example.com/login")

	require.NoError(t, store.SaveResult(res))

	got, found, err := store.GetResult(res.Fingerprint)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, res.URL, got.URL)
	assert.Equal(t, res.StatusCode, got.StatusCode)
	assert.Equal(t, res.Body, got.Body)
	assert.Equal(t, res.Fingerprint, got.Fingerprint)
}

func TestGetResult_Missing(t *testing.T) {
	store := newTestStore(t)

	got, found, err := store.GetResult("0000000000000000")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestSaveResult_NoFingerprint(t *testing.T) {
	store := newTestStore(t)
	err := store.SaveResult(&models.CollectionResult{URL: "https://example.com"})
	assert.ErrorIs(t, err, utils.ErrDatabase)
}

func TestSeen(t *testing.T) {
	store := newTestStore(t)
	res := sampleResult("https://example.com/a")

	seen, err := store.Seen(res.Fingerprint)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.SaveResult(res))

	seen, err = store.Seen(res.Fingerprint)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestResultCount(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, 0, store.ResultCount())

	require.NoError(t, store.SaveResult(sampleResult("https://example.com/a")))
	require.NoError(t, store.SaveResult(sampleResult("https://example.com/b")))
	assert.Equal(t, 2, store.ResultCount())

	// Re-saving the same fingerprint does not inflate the count
	require.NoError(t, store.SaveResult(sampleResult("https://example.com/a")))
	assert.Equal(t, 2, store.ResultCount())
}

func TestSaveAndGetVector(t *testing.T) {
	store := newTestStore(t)
	vec := []float64{1, 0, 3.5, 0.25}

	require.NoError(t, store.SaveVector("abc123", vec))

	got, found, err := store.GetVector("abc123")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, vec, got)

	_, found, err = store.GetVector("missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestVectorKeysDoNotCountAsResults(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveVector("abc123", []float64{1}))
	assert.Equal(t, 0, store.ResultCount())

	seen, err := store.Seen("abc123")
	require.NoError(t, err)
	assert.False(t, seen, "a stored vector alone does not mark the fingerprint seen")
}

func TestReopenPreservesData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	logger := testLogger()
	res := sampleResult("https://example.com/persist")

	store1, err := NewBadgerStore(ctx, dir, logger)
	require.NoError(t, err)
	require.NoError(t, store1.SaveResult(res))
	require.NoError(t, store1.SaveVector(res.Fingerprint, []float64{1, 2, 3}))
	require.NoError(t, store1.Close())

	store2, err := NewBadgerStore(ctx, dir, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store2.Close() })

	assert.Equal(t, 1, store2.ResultCount(), "count is rebuilt from disk on open")

	got, found, err := store2.GetResult(res.Fingerprint)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, res.URL, got.URL)

	vec, found, err := store2.GetVector(res.Fingerprint)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []float64{1, 2, 3}, vec)
}

func TestClose_Idempotent(t *testing.T) {
	store, err := NewBadgerStore(context.Background(), t.TempDir(), testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
