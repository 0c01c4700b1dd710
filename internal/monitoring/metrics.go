package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the harvester.
type Metrics struct {
	ListingPages     prometheus.Counter
	PlayersExtracted prometheus.Counter
	PlayersSkipped   prometheus.Counter
	PricePoints      prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		ListingPages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_listing_pages_total",
			Help: "The total number of listing pages processed",
		}),
		PlayersExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_players_extracted_total",
			Help: "The total number of player records extracted and persisted",
		}),
		PlayersSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_players_skipped_total",
			Help: "The total number of players skipped because a record already existed",
		}),
		PricePoints: promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_price_points_total",
			Help: "The total number of price samples written",
		}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. 'fetch_failed', 'parse_failed', 'save_failed'
	}
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
