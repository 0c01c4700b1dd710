package crawler

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/fut-harvester/internal/domain"
	"github.com/user/fut-harvester/internal/fetch"
	"github.com/user/fut-harvester/internal/monitoring"
	"github.com/user/fut-harvester/internal/storage"
)

// ListingCrawler walks the paginated player index and emits one
// (name, url) pair per anchor found.
type ListingCrawler struct {
	session     *fetch.Session
	urlTemplate string
	baseURL     string
	workers     int
	metrics     *monitoring.Metrics
	logger      *zap.Logger
}

func NewListingCrawler(s *fetch.Session, urlTemplate, baseURL string, workers int, m *monitoring.Metrics, l *zap.Logger) *ListingCrawler {
	return &ListingCrawler{
		session:     s,
		urlTemplate: urlTemplate,
		baseURL:     baseURL,
		workers:     workers,
		metrics:     m,
		logger:      l,
	}
}

// ParseListing extracts player references from one listing page. A page
// with no matching anchors yields an empty slice, not an error.
func ParseListing(baseURL string, body []byte) ([]domain.PlayerRef, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var refs []domain.PlayerRef
	doc.Find("a.player_name_players_table").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		refs = append(refs, domain.PlayerRef{Name: s.Text(), URL: baseURL + href})
	})
	return refs, nil
}

// Run fetches pages 1..pages with a bounded worker pool and appends every
// reference to sink. An unreachable or unparsable page is a logged gap,
// never fatal. Returns the number of references written.
func (c *ListingCrawler) Run(ctx context.Context, pages int, sink *storage.CSVSink) (int, error) {
	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				refs := c.crawlPage(ctx, page)
				rows := make([][]string, len(refs))
				for i, ref := range refs {
					rows[i] = []string{ref.Name, ref.URL}
				}
				if err := sink.Append(rows...); err != nil {
					c.logger.Error("failed to write listing rows", zap.Int("page", page), zap.Error(err))
					c.metrics.IncErrorsTotal("listing_write_failed")
					continue
				}
				mu.Lock()
				total += len(refs)
				mu.Unlock()
			}
		}()
	}

	for page := 1; page <= pages; page++ {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return total, ctx.Err()
		case jobs <- page:
		}
	}
	close(jobs)
	wg.Wait()
	return total, nil
}

func (c *ListingCrawler) crawlPage(ctx context.Context, page int) []domain.PlayerRef {
	url := fmt.Sprintf(c.urlTemplate, page)
	body, err := c.session.Get(ctx, url)
	if err != nil {
		c.logger.Warn("listing page unreachable", zap.Int("page", page), zap.Error(err))
		c.metrics.IncErrorsTotal("listing_fetch_failed")
		return nil
	}

	refs, err := ParseListing(c.baseURL, body)
	if err != nil {
		c.logger.Warn("listing page unparsable", zap.Int("page", page), zap.Error(err))
		c.metrics.IncErrorsTotal("listing_parse_failed")
		return nil
	}

	c.metrics.ListingPages.Inc()
	c.logger.Info("listing page processed", zap.Int("page", page), zap.Int("players", len(refs)))
	return refs
}
