package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/fut-harvester/internal/domain"
	"github.com/user/fut-harvester/internal/fetch"
	"github.com/user/fut-harvester/internal/monitoring"
	"github.com/user/fut-harvester/internal/storage"
)

// PriceFetcher pulls the per-player daily price series and flattens it
// into the price history table.
type PriceFetcher struct {
	session     *fetch.Session
	urlTemplate string
	workers     int
	metrics     *monitoring.Metrics
	logger      *zap.Logger
}

func NewPriceFetcher(s *fetch.Session, urlTemplate string, workers int, m *monitoring.Metrics, l *zap.Logger) *PriceFetcher {
	return &PriceFetcher{
		session:     s,
		urlTemplate: urlTemplate,
		workers:     workers,
		metrics:     m,
		logger:      l,
	}
}

// FlattenPriceSeries decodes one price endpoint response into samples.
// Platforms are emitted in sorted order for reproducible output within a
// player; epoch timestamps are converted to dates in the local system
// time zone, matching the rest of the dataset (a known inconsistency:
// the observation zone depends on where the harvester runs).
func FlattenPriceSeries(playerID string, body []byte) ([]domain.PriceSample, error) {
	var series map[string][][]json.Number
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("%w: price series: %v", ErrMalformedPayload, err)
	}

	platforms := make([]string, 0, len(series))
	for platform := range series {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	var samples []domain.PriceSample
	for _, platform := range platforms {
		for _, pair := range series[platform] {
			if len(pair) < 2 {
				continue
			}
			ts, err := pair[0].Int64()
			if err != nil {
				return nil, fmt.Errorf("%w: price timestamp %q", ErrMalformedPayload, pair[0])
			}
			price, err := pair[1].Int64()
			if err != nil {
				f, ferr := pair[1].Float64()
				if ferr != nil {
					return nil, fmt.Errorf("%w: price value %q", ErrMalformedPayload, pair[1])
				}
				price = int64(f)
			}
			samples = append(samples, domain.PriceSample{
				PlayerID: playerID,
				Platform: platform,
				Date:     time.UnixMilli(ts).Format("2006-01-02"),
				Price:    price,
			})
		}
	}
	return samples, nil
}

// Run fetches the price series for every id with rating above minRating
// and appends the flattened rows to sink. Rows land in completion order
// under concurrent fetching.
func (f *PriceFetcher) Run(ctx context.Context, ids []domain.RatedID, minRating float64, sink *storage.CSVSink) error {
	jobs := make(chan domain.RatedID)
	var wg sync.WaitGroup
	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rated := range jobs {
				f.process(ctx, rated.ID, sink)
			}
		}()
	}

	queued := 0
	for _, rated := range ids {
		if rated.Rating <= minRating {
			continue
		}
		queued++
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- rated:
		}
	}
	close(jobs)
	wg.Wait()

	f.logger.Info("price fetch finished", zap.Int("players", queued))
	return nil
}

func (f *PriceFetcher) process(ctx context.Context, id string, sink *storage.CSVSink) {
	url := fmt.Sprintf(f.urlTemplate, id)
	body, err := f.session.Get(ctx, url)
	if err != nil {
		f.logger.Warn("price series unreachable", zap.String("id", id), zap.Error(err))
		f.metrics.IncErrorsTotal("price_fetch_failed")
		return
	}

	samples, err := FlattenPriceSeries(id, body)
	if err != nil {
		f.logger.Warn("price series unparsable", zap.String("id", id), zap.Error(err))
		f.metrics.IncErrorsTotal("price_parse_failed")
		return
	}

	rows := make([][]string, len(samples))
	for i, s := range samples {
		rows[i] = []string{s.PlayerID, s.Platform, s.Date, strconv.FormatInt(s.Price, 10)}
	}
	if err := sink.Append(rows...); err != nil {
		f.logger.Error("failed to write price rows", zap.String("id", id), zap.Error(err))
		f.metrics.IncErrorsTotal("price_write_failed")
		return
	}
	f.metrics.PricePoints.Add(float64(len(samples)))
}
