package crawler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/user/fut-harvester/internal/domain"
	"github.com/user/fut-harvester/internal/fetch"
	"github.com/user/fut-harvester/internal/monitoring"
	"github.com/user/fut-harvester/internal/storage"
)

// DetailCrawler fetches detail pages for players not yet in the archive
// and persists one record per player.
type DetailCrawler struct {
	session *fetch.Session
	archive *storage.RecordArchive
	mirror  *storage.PostgresMirror // nil when the mirror is disabled
	workers int
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewDetailCrawler(s *fetch.Session, a *storage.RecordArchive, m *storage.PostgresMirror, workers int, mt *monitoring.Metrics, l *zap.Logger) *DetailCrawler {
	return &DetailCrawler{
		session: s,
		archive: a,
		mirror:  m,
		workers: workers,
		metrics: mt,
		logger:  l,
	}
}

type detailTask struct {
	id  string
	url string
}

// Run resolves the set of ids to fetch (discovered minus already
// archived, the known set snapshotted once) and processes them with a
// bounded worker pool. No single player's failure aborts the run.
func (c *DetailCrawler) Run(ctx context.Context, refs []domain.PlayerRef) error {
	known, err := c.archive.KnownIDs()
	if err != nil {
		return err
	}

	pending := make([]detailTask, 0, len(refs))
	queued := make(map[string]struct{})
	for _, ref := range refs {
		id, err := PlayerIDFromURL(ref.URL)
		if err != nil {
			c.logger.Warn("skipping malformed player url", zap.String("url", ref.URL), zap.Error(err))
			c.metrics.IncErrorsTotal("malformed_url")
			continue
		}
		if _, ok := known[id]; ok {
			c.metrics.PlayersSkipped.Inc()
			continue
		}
		if _, ok := queued[id]; ok {
			continue
		}
		queued[id] = struct{}{}
		pending = append(pending, detailTask{id: id, url: ref.URL})
	}

	c.logger.Info("detail crawl starting",
		zap.Int("discovered", len(refs)),
		zap.Int("cached", len(known)),
		zap.Int("pending", len(pending)))

	jobs := make(chan detailTask)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				c.process(ctx, task)
			}
		}()
	}

	for _, task := range pending {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- task:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (c *DetailCrawler) process(ctx context.Context, task detailTask) {
	body, err := c.session.Get(ctx, task.url)
	if err != nil {
		c.logger.Warn("detail page unreachable", zap.String("id", task.id), zap.Error(err))
		c.metrics.IncErrorsTotal("detail_fetch_failed")
		return
	}

	player, err := ExtractPlayer(task.url, body)
	if err != nil {
		c.logger.Warn("detail page unparsable", zap.String("id", task.id), zap.Error(err))
		c.metrics.IncErrorsTotal("detail_parse_failed")
		return
	}
	if len(player.Missing) > 0 {
		c.logger.Warn("partial player record",
			zap.String("id", player.ID),
			zap.Strings("missing", player.Missing))
	}

	written, err := c.archive.Save(player)
	if err != nil {
		c.logger.Error("failed to persist player record", zap.String("id", player.ID), zap.Error(err))
		c.metrics.IncErrorsTotal("detail_save_failed")
		return
	}
	if !written {
		// Lost the race against a concurrent run; the existing record wins.
		c.metrics.PlayersSkipped.Inc()
		return
	}
	c.metrics.PlayersExtracted.Inc()
	c.logger.Info("player record persisted", zap.String("id", player.ID))

	if c.mirror != nil {
		if err := c.mirror.SavePlayer(ctx, player); err != nil {
			c.logger.Warn("postgres mirror insert failed", zap.String("id", player.ID), zap.Error(err))
			c.metrics.IncErrorsTotal("mirror_save_failed")
		}
	}
}
