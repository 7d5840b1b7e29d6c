package online

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"customer-merger/core/lock"
	"customer-merger/core/storage"
	"customer-merger/core/storage/mocks"
	"customer-merger/feature/profile/models"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, store *fakeStore, locker lock.Locker, archiver *storage.Archiver) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	svc := NewService(newTestController(store, testConfig()), store, locker, archiver, logger)
	app := fiber.New()
	NewHandler(svc, logger).RegisterRoutes(app)
	return app
}

func TestHandleRun(t *testing.T) {
	store := &fakeStore{reservations: []models.Reservation{booking(1, "010190-123A", "", day(1))}}
	app := setupTestApp(t, store, lock.NewLocal(), nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/merge/run", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var status Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, 1, status.NewProfiles)
	assert.NotNil(t, store.stored("R-1"))
}

func TestHandleRun_Busy(t *testing.T) {
	store := &fakeStore{}
	locker := lock.NewLocal()
	release, err := locker.Acquire(context.Background(), lockName)
	require.NoError(t, err)
	defer release(context.Background())

	app := setupTestApp(t, store, locker, nil)
	for _, path := range []string{"/merge/run", "/merge/dedup"} {
		resp, err := app.Test(httptest.NewRequest("POST", path, nil))
		require.NoError(t, err)
		assert.Equal(t, 409, resp.StatusCode, path)
	}
}

func TestHandleRun_StoreFailure(t *testing.T) {
	store := &fakeStore{reservations: []models.Reservation{booking(1, "010190-123A", "", day(1))}}
	store.insertErr = assert.AnError
	app := setupTestApp(t, store, lock.NewLocal(), nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/merge/run", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleDedup_ArchivesReport(t *testing.T) {
	store := &fakeStore{}
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "test-bucket", mock.MatchedBy(func(key string) bool {
		return len(key) > 0
	}), mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	app := setupTestApp(t, store, lock.NewLocal(), storage.NewArchiver(mockClient, "test-bucket", "merge"))
	resp, err := app.Test(httptest.NewRequest("POST", "/merge/dedup", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report DedupReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Zero(t, report.Scanned)
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestHandleGetCustomer(t *testing.T) {
	store := &fakeStore{}
	c := mustProfile(t, booking(1, "010190-123A", "mika@gmail.com", day(1)))
	require.NoError(t, store.InsertCustomers(context.Background(), []*models.Customer{c}))
	app := setupTestApp(t, store, lock.NewLocal(), nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/customers/R-1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body models.Customer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "R-1", body.ID)
	assert.Equal(t, "mika@gmail.com", body.Email)

	resp, err = app.Test(httptest.NewRequest("GET", "/customers/G-404", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestLoader(t *testing.T) {
	store := &fakeStore{}
	logger := zap.NewNop()
	svc := NewService(newTestController(store, testConfig()), store, lock.NewLocal(), nil, logger)
	feature := NewFeature(svc, NewHandler(svc, logger))

	assert.Equal(t, "merge", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NoError(t, feature.Load(fiber.New()))

	assert.False(t, NewFeature(nil, nil).IsEnabled())
}
