package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"puja-booking-api/internal/models"
	"puja-booking-api/internal/sources"
	"puja-booking-api/internal/store"
	"puja-booking-api/pkg/apperrors"
	"puja-booking-api/pkg/cache"
	"puja-booking-api/pkg/idcodec"
	"puja-booking-api/pkg/logger"
	"puja-booking-api/pkg/metrics"
)

// CatalogService answers catalog queries against the current snapshot and
// keeps that snapshot fresh from the remote source.
type CatalogService struct {
	store  *store.CatalogStore
	source sources.Source
	cache  *cache.RedisCache
	codec  *idcodec.Codec
	log    logger.Logger

	refreshMu sync.Mutex
}

// RefreshResult summarises one successful snapshot swap.
type RefreshResult struct {
	Version  uint64 `json:"version"`
	Records  int    `json:"records"`
	Duration string `json:"duration"`
}

// CatalogStatus is reported by the health endpoint.
type CatalogStatus struct {
	Loaded   bool      `json:"loaded"`
	Version  uint64    `json:"version"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
}

// NewCatalogService wires the service. redisCache may be nil.
func NewCatalogService(st *store.CatalogStore, src sources.Source, redisCache *cache.RedisCache, codec *idcodec.Codec, log logger.Logger) *CatalogService {
	return &CatalogService{
		store:  st,
		source: src,
		cache:  redisCache,
		codec:  codec,
		log:    log.WithFields(map[string]interface{}{"component": "catalog_service"}),
	}
}

// Search runs the query pipeline for spec. An empty result or a page past
// the end is a normal response, not an error.
func (s *CatalogService) Search(ctx context.Context, spec models.QuerySpec) (*models.SearchResponse, error) {
	startTime := time.Now()

	if err := spec.Validate(); err != nil {
		return nil, apperrors.NewInvalidQueryError(err.Error())
	}

	snap := s.store.Snapshot()
	if snap == nil {
		return nil, apperrors.NewCatalogUnavailableError()
	}

	cacheKey := ""
	if s.cache.IsAvailable() {
		cacheKey = cache.GenerateQueryKey(spec, snap.Fingerprint)
		cached, err := s.cache.GetSearchResults(ctx, cacheKey)
		if err != nil {
			s.log.Warn("Cache read failed", map[string]interface{}{"key": cacheKey, "error": err})
		} else if cached != nil {
			elapsed := time.Since(startTime)
			metrics.CatalogQueries.WithLabelValues("cache").Inc()
			metrics.CatalogQueryDuration.WithLabelValues("cache").Observe(elapsed.Seconds())
			s.log.Debug("Cache HIT", map[string]interface{}{"key": cacheKey})

			cached.Query = spec
			cached.CatalogVersion = snap.Version
			cached.Cached = true
			cached.Duration = fmt.Sprintf("%s (cached)", elapsed.String())
			return cached, nil
		}
		s.log.Debug("Cache MISS", map[string]interface{}{"key": cacheKey})
	}

	page := RunPipeline(snap.Records, spec)
	for i := range page.Items {
		page.Items[i] = page.Items[i].Public(s.codec.Encode(page.Items[i].ID))
	}

	elapsed := time.Since(startTime)
	response := &models.SearchResponse{
		ResultPage:     page,
		Query:          spec,
		CatalogVersion: snap.Version,
		Duration:       elapsed.String(),
	}
	metrics.CatalogQueries.WithLabelValues("pipeline").Inc()
	metrics.CatalogQueryDuration.WithLabelValues("pipeline").Observe(elapsed.Seconds())

	if cacheKey != "" {
		if err := s.cache.SetSearchResults(ctx, cacheKey, response); err != nil {
			s.log.Warn("Failed to cache results", map[string]interface{}{"key": cacheKey, "error": err})
		}
	}

	return response, nil
}

// Resolve maps a token to the snapshot record it names. Inactive records
// resolve too; callers decide whether they are usable.
func (s *CatalogService) Resolve(token string) (models.ServiceRecord, error) {
	snap := s.store.Snapshot()
	if snap == nil {
		return models.ServiceRecord{}, apperrors.NewCatalogUnavailableError()
	}
	id, ok := s.codec.Decode(token)
	if !ok {
		return models.ServiceRecord{}, apperrors.NewServiceNotFoundError(token)
	}
	record, ok := snap.Get(id)
	if !ok {
		return models.ServiceRecord{}, apperrors.NewServiceNotFoundError(token)
	}
	return record, nil
}

// GetByToken returns the public view of an active record.
func (s *CatalogService) GetByToken(token string) (models.ServiceRecord, error) {
	record, err := s.Resolve(token)
	if err != nil {
		return models.ServiceRecord{}, err
	}
	if !record.IsActive {
		return models.ServiceRecord{}, apperrors.NewServiceNotFoundError(token)
	}
	return record.Public(token), nil
}

// Refresh fetches the full catalog and swaps it in. On failure the previous
// snapshot keeps serving.
func (s *CatalogService) Refresh(ctx context.Context) (*RefreshResult, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	startTime := time.Now()
	records, err := s.source.Fetch(ctx)
	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("failure").Inc()
		s.log.Error("Catalog refresh failed", map[string]interface{}{"error": err})
		return nil, apperrors.NewCatalogFetchFailedError(err)
	}

	version := s.store.Replace(records)
	metrics.CatalogRefreshes.WithLabelValues("success").Inc()
	metrics.CatalogSize.Set(float64(len(records)))

	result := &RefreshResult{
		Version:  version,
		Records:  len(records),
		Duration: time.Since(startTime).String(),
	}
	s.log.Info("Catalog snapshot replaced", map[string]interface{}{
		"version":     result.Version,
		"fingerprint": s.store.Snapshot().Fingerprint,
		"records":     result.Records,
		"duration":    result.Duration,
	})
	return result, nil
}

// Loaded reports whether a catalog snapshot is being served.
func (s *CatalogService) Loaded() bool {
	return s.store.Loaded()
}

func (s *CatalogService) Status() CatalogStatus {
	snap := s.store.Snapshot()
	if snap == nil {
		return CatalogStatus{}
	}
	return CatalogStatus{
		Loaded:   true,
		Version:  snap.Version,
		Records:  len(snap.Records),
		LoadedAt: snap.LoadedAt,
	}
}

// Cache exposes the result cache for the admin endpoints; it may be nil.
func (s *CatalogService) Cache() *cache.RedisCache {
	return s.cache
}
