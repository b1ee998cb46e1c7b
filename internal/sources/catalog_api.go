package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"puja-booking-api/internal/config"
	"puja-booking-api/internal/models"
	"puja-booking-api/pkg/logger"
	"puja-booking-api/pkg/metrics"
	"puja-booking-api/pkg/utils"
)

// Source produces a complete catalog listing.
type Source interface {
	Fetch(ctx context.Context) ([]models.ServiceRecord, error)
}

const userAgent = "puja-booking-api/1.0 (+catalog-sync)"

// CatalogAPI reads the catalog from the remote REST service, following
// envelope "next" links until the listing is exhausted or MaxPages is hit.
type CatalogAPI struct {
	startURL *url.URL
	cfg      config.CatalogConfig
	log      logger.Logger
}

func NewCatalogAPI(cfg config.CatalogConfig, log logger.Logger) (*CatalogAPI, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid catalog base url %q", cfg.BaseURL)
	}
	start := base.JoinPath(cfg.ServicesPath)
	if strings.HasSuffix(cfg.ServicesPath, "/") && !strings.HasSuffix(start.Path, "/") {
		start.Path += "/"
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	return &CatalogAPI{
		startURL: start,
		cfg:      cfg,
		log:      log.WithFields(map[string]interface{}{"component": "catalog_api"}),
	}, nil
}

func (a *CatalogAPI) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.StdlibContext(ctx),
	)
	if a.cfg.RequestTimeout > 0 {
		c.SetRequestTimeout(a.cfg.RequestTimeout)
	}
	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       a.cfg.RequestDelay,
	})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
	})
	return c
}

// Fetch downloads every catalog page. A transport failure or an undecodable
// page fails the whole fetch; individual bad records are skipped.
func (a *CatalogAPI) Fetch(ctx context.Context) ([]models.ServiceRecord, error) {
	start := time.Now()
	c := a.newCollector(ctx)

	var (
		mu       sync.Mutex
		raw      []json.RawMessage
		pages    int
		fetchErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if fetchErr == nil {
			fetchErr = err
		}
	}

	c.OnError(func(r *colly.Response, err error) {
		fail(fmt.Errorf("GET %s: status %d: %w", r.Request.URL, r.StatusCode, err))
	})

	c.OnResponse(func(r *colly.Response) {
		payload, err := models.DecodeCatalogPayload(r.Body)
		if err != nil {
			fail(fmt.Errorf("GET %s: %w", r.Request.URL, err))
			return
		}

		mu.Lock()
		raw = append(raw, payload.Records...)
		pages++
		seen := pages
		mu.Unlock()

		a.log.Debug("Catalog page received", map[string]interface{}{
			"url":     r.Request.URL.String(),
			"kind":    payload.Kind.String(),
			"records": len(payload.Records),
			"count":   payload.Count,
		})

		if payload.Next == "" {
			return
		}
		if seen >= a.cfg.MaxPages {
			a.log.Warn("Catalog page limit reached, listing truncated", map[string]interface{}{
				"max_pages": a.cfg.MaxPages,
				"next":      payload.Next,
			})
			return
		}
		next, err := a.resolveNext(r.Request, payload.Next)
		if err != nil {
			fail(err)
			return
		}
		var visited *colly.AlreadyVisitedError
		if err := r.Request.Visit(next); err != nil && !errors.As(err, &visited) {
			fail(fmt.Errorf("follow %s: %w", next, err))
		}
	})

	visitErr := c.Visit(a.startURL.String())
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if visitErr != nil {
		return nil, fmt.Errorf("visit %s: %w", a.startURL, visitErr)
	}

	records := DecodeRecords(raw, a.log)
	a.log.Info("Catalog fetched", map[string]interface{}{
		"pages":    pages,
		"received": len(raw),
		"kept":     len(records),
		"duration": time.Since(start).String(),
	})
	return records, nil
}

// resolveNext keeps pagination on the catalog host.
func (a *CatalogAPI) resolveNext(req *colly.Request, next string) (string, error) {
	abs := req.AbsoluteURL(next)
	u, err := url.Parse(abs)
	if abs == "" || err != nil {
		return "", fmt.Errorf("invalid next link %q", next)
	}
	if u.Host != a.startURL.Host {
		return "", fmt.Errorf("next link %q leaves catalog host %s", next, a.startURL.Host)
	}
	return abs, nil
}

// DecodeRecords turns raw catalog items into records. Items that fail to
// decode or violate record invariants are dropped with a warning.
func DecodeRecords(raw []json.RawMessage, log logger.Logger) []models.ServiceRecord {
	out := make([]models.ServiceRecord, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))

	skip := func(i int, reason string, err error) {
		metrics.CatalogRecordsSkipped.WithLabelValues(reason).Inc()
		log.Warn("Skipping catalog record", map[string]interface{}{
			"index":  i,
			"reason": reason,
			"error":  err,
		})
	}

	for i, item := range raw {
		var rec models.ServiceRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			skip(i, "decode", err)
			continue
		}
		if !rec.ServiceType.Valid() {
			skip(i, "unknown_type", fmt.Errorf("record %d: service type %q", rec.ID, rec.ServiceType))
			continue
		}
		if err := rec.Validate(); err != nil {
			skip(i, "invalid", err)
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			skip(i, "duplicate_id", fmt.Errorf("record %d seen twice", rec.ID))
			continue
		}
		seen[rec.ID] = struct{}{}

		rec.Token = ""
		rec.DescriptionText = utils.PlainText(rec.Description)
		out = append(out, rec)
	}
	return out
}
