package collect

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"phishscope/pkg/config"
	"phishscope/pkg/fetch"
	"phishscope/pkg/models"
	"phishscope/pkg/parse"
	"phishscope/pkg/tlsinspect"
	"phishscope/pkg/utils"
)

// Collector coordinates the per-URL pipeline: fetch, certificate inspection
// for https targets, markup parsing, and fingerprinting. The HTTP client's
// connection pool and the admission semaphore are the only shared state;
// each URL produces an independent CollectionResult.
type Collector struct {
	fetcher   *fetch.Fetcher
	inspector *tlsinspect.Inspector
	cfg       config.CollectorConfig
	log       *logrus.Logger
	sem       *semaphore.Weighted
}

// NewCollector builds a Collector and its shared HTTP client from cfg.
// Call cfg.Validate() first; NewCollector trusts the config it is given.
func NewCollector(cfg config.CollectorConfig, log *logrus.Logger) *Collector {
	client := fetch.NewClient(cfg, log)
	return &Collector{
		fetcher:   fetch.NewFetcher(client, cfg, log),
		inspector: tlsinspect.NewInspector(cfg.InspectTimeout, log),
		cfg:       cfg,
		log:       log,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
}

// CollectOne runs the full pipeline for a single URL. Only a fetch failure
// aborts collection; parser and SSL-inspection failures degrade to empty
// structure / nil SSLInfo and the record is still returned.
func (c *Collector) CollectOne(ctx context.Context, rawURL string) (*models.CollectionResult, error) {
	fetched, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// Fetch validated the URL already; a parse failure here only costs us
	// the base for relative-reference resolution
	base, parseErr := url.Parse(rawURL)
	if parseErr != nil {
		base = nil
	}

	page := parse.ParsePage(fetched.Body, base, c.log)

	var sslInfo *models.SSLInfo
	if base != nil && base.Scheme == "https" {
		sslInfo = c.inspector.Inspect(ctx, base.Host)
	}

	result := &models.CollectionResult{
		URL:           fetched.URL,
		StatusCode:    fetched.StatusCode,
		ContentType:   fetched.ContentType,
		ContentLength: fetched.ContentLength,
		Headers:       fetched.Headers,
		Cookies:       fetched.Cookies,
		Body:          fetched.Body,
		RedirectChain: fetched.RedirectChain,
		ResponseTime:  fetched.ResponseTime,
		Page:          page,
		Fingerprint:   utils.Fingerprint(fetched.URL, fetched.Headers, fetched.Body),
		SSLInfo:       sslInfo,
		CollectedAt:   time.Now(),
	}

	c.log.WithFields(logrus.Fields{
		"url":         rawURL,
		"status_code": result.StatusCode,
		"fingerprint": result.Fingerprint[:12],
	}).Info("Collected website data")

	return result, nil
}

// CollectMany collects every URL with at most cfg.MaxConcurrent fetches in
// flight. Output preserves input order regardless of completion order, and
// one URL's failure or timeout never cancels or taints its siblings: each
// failed URL appears exactly once, tagged with its fetch error.
func (c *Collector) CollectMany(ctx context.Context, urls []string) []models.BatchItem {
	batchLog := c.log.WithFields(logrus.Fields{
		"batch_id": uuid.NewString(),
		"urls":     len(urls),
	})
	batchLog.Info("Starting batch collection")
	start := time.Now()

	// Results land at their input index, never appended in completion order
	items := make([]models.BatchItem, len(urls))

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(idx int, rawURL string) {
			defer wg.Done()

			if err := c.sem.Acquire(ctx, 1); err != nil {
				items[idx] = models.BatchItem{URL: rawURL, Err: &fetch.Error{
					Kind: utils.CategorizeError(err), URL: rawURL, Err: err,
				}}
				return
			}
			defer c.sem.Release(1)

			result, err := c.CollectOne(ctx, rawURL)
			items[idx] = models.BatchItem{URL: rawURL, Result: result, Err: err}
		}(i, u)
	}
	wg.Wait()

	succeeded := 0
	for _, item := range items {
		if item.Err == nil {
			succeeded++
		}
	}
	batchLog.WithFields(logrus.Fields{
		"succeeded": succeeded,
		"failed":    len(urls) - succeeded,
		"duration":  time.Since(start),
	}).Info("Batch collection finished")

	return items
}
