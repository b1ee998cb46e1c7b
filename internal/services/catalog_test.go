package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"puja-booking-api/internal/models"
	"puja-booking-api/internal/store"
	"puja-booking-api/pkg/apperrors"
	"puja-booking-api/pkg/cache"
	"puja-booking-api/pkg/idcodec"
	"puja-booking-api/pkg/logger"
)

type stubSource struct {
	records []models.ServiceRecord
	err     error
	calls   int
}

func (s *stubSource) Fetch(ctx context.Context) ([]models.ServiceRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func newCatalogService(t *testing.T, src *stubSource, withCache bool) (*CatalogService, *idcodec.Codec) {
	t.Helper()
	codec, err := idcodec.New("catalog-test")
	require.NoError(t, err)

	var rc *cache.RedisCache
	if withCache {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		rc = cache.NewWithClient(client, time.Minute, logger.NewTestLogger(t))
	}
	return NewCatalogService(store.NewCatalogStore(), src, rc, codec, logger.NewTestLogger(t)), codec
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.AsStandard(err).Code)
}

func TestCatalogService_SearchBeforeLoad(t *testing.T) {
	svc, _ := newCatalogService(t, &stubSource{}, false)

	_, err := svc.Search(context.Background(), defaultSpec())
	assertCode(t, err, apperrors.ErrCodeCatalogUnavailable)
	assert.False(t, svc.Status().Loaded)
}

func TestCatalogService_SearchInvalidQuery(t *testing.T) {
	svc, _ := newCatalogService(t, &stubSource{records: sampleCatalog()}, false)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name string
		spec models.QuerySpec
	}{
		{name: "bad sort key", spec: models.QuerySpec{SortBy: "rating", Page: 1, PageSize: 12}},
		{name: "bad order", spec: models.QuerySpec{SortBy: models.SortPrice, SortOrder: "up", Page: 1, PageSize: 12}},
		{name: "bad type", spec: models.QuerySpec{ServiceType: "yoga", Page: 1, PageSize: 12}},
		{name: "bad bucket", spec: models.QuerySpec{PriceRange: "cheap", Page: 1, PageSize: 12}},
		{name: "zero page", spec: models.QuerySpec{Page: 0, PageSize: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.spec)
			assertCode(t, err, apperrors.ErrCodeInvalidQuery)
		})
	}
}

func TestCatalogService_SearchTokenizesItems(t *testing.T) {
	svc, codec := newCatalogService(t, &stubSource{records: sampleCatalog()}, false)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	spec := defaultSpec()
	spec.SortBy = models.SortPrice
	resp, err := svc.Search(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, 5, resp.TotalCount)
	assert.Equal(t, uint64(1), resp.CatalogVersion)
	assert.False(t, resp.Cached)
	for _, item := range resp.Items {
		assert.Zero(t, item.ID, "raw ids are not exposed")
		id, ok := codec.Decode(item.Token)
		require.True(t, ok)
		assert.NotZero(t, id)
	}
	assert.Equal(t, "Kundli Reading", resp.Items[1].Title)
}

func TestCatalogService_SearchUsesCache(t *testing.T) {
	src := &stubSource{records: sampleCatalog()}
	svc, _ := newCatalogService(t, src, true)
	ctx := context.Background()
	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	first, err := svc.Search(ctx, defaultSpec())
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Search(ctx, defaultSpec())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.TotalCount, second.TotalCount)
	assert.Equal(t, first.Items[0].Token, second.Items[0].Token)

	// a new snapshot must not serve pages computed from the old one
	src.records = sampleCatalog()[:2]
	_, err = svc.Refresh(ctx)
	require.NoError(t, err)

	third, err := svc.Search(ctx, defaultSpec())
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 2, third.TotalCount)
	assert.Equal(t, uint64(2), third.CatalogVersion)
}

func TestCatalogService_SharedRedisAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	codec, err := idcodec.New("catalog-test")
	require.NoError(t, err)
	ctx := context.Background()

	instance := func(records []models.ServiceRecord) *CatalogService {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		rc := cache.NewWithClient(client, time.Minute, logger.NewTestLogger(t))
		svc := NewCatalogService(store.NewCatalogStore(), &stubSource{records: records}, rc, codec, logger.NewTestLogger(t))
		_, err := svc.Refresh(ctx)
		require.NoError(t, err)
		return svc
	}

	full := instance(sampleCatalog())
	first, err := full.Search(ctx, defaultSpec())
	require.NoError(t, err)
	require.False(t, first.Cached)

	// same version number, different catalog
	partial := instance(sampleCatalog()[:2])
	got, err := partial.Search(ctx, defaultSpec())
	require.NoError(t, err)
	assert.False(t, got.Cached)
	assert.Equal(t, 2, got.TotalCount)
	assert.Equal(t, first.CatalogVersion, got.CatalogVersion)

	twin := instance(sampleCatalog())
	got, err = twin.Search(ctx, defaultSpec())
	require.NoError(t, err)
	assert.True(t, got.Cached)
	assert.Equal(t, first.TotalCount, got.TotalCount)
}

func TestCatalogService_RefreshFailureKeepsSnapshot(t *testing.T) {
	src := &stubSource{records: sampleCatalog()}
	svc, _ := newCatalogService(t, src, false)
	ctx := context.Background()

	res, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Version)
	assert.Equal(t, 6, res.Records)

	src.err = errors.New("connection refused")
	_, err = svc.Refresh(ctx)
	assertCode(t, err, apperrors.ErrCodeCatalogFetchFailed)

	status := svc.Status()
	assert.True(t, svc.Loaded())
	assert.True(t, status.Loaded)
	assert.Equal(t, uint64(1), status.Version)
	assert.Equal(t, 6, status.Records)
}

func TestCatalogService_GetByToken(t *testing.T) {
	svc, codec := newCatalogService(t, &stubSource{records: sampleCatalog()}, false)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	token := codec.Encode(3)
	record, err := svc.GetByToken(token)
	require.NoError(t, err)
	assert.Equal(t, "Kundli Reading", record.Title)
	assert.Equal(t, token, record.Token)
	assert.Zero(t, record.ID)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "unknown id", token: codec.Encode(999)},
		{name: "inactive", token: codec.Encode(5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetByToken(tt.token)
			assertCode(t, err, apperrors.ErrCodeServiceNotFound)
		})
	}

	inactive, err := svc.Resolve(codec.Encode(5))
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)
}
