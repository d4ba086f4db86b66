package assess

import (
	"context"
	"time"

	"github.com/fieldscope/land-quality-service/internal/domain"
)

// lookbackWindow describes one NDVI history query span.
type lookbackWindow struct {
	label string
	span  time.Duration
}

// lookbackWindows is the fixed retry ladder: widest window first, narrowing
// until one returns usable entries. Satellite NDVI coverage is sparse and
// cloud-dependent, so a narrow recent window frequently comes back empty
// while a wide one succeeds. A wide window is also the better baseline,
// hence widest-first.
var lookbackWindows = []lookbackWindow{
	{label: "1y", span: 365 * 24 * time.Hour},
	{label: "6m", span: 182 * 24 * time.Hour},
	{label: "3m", span: 91 * 24 * time.Hour},
	{label: "30d", span: 30 * 24 * time.Hour},
	{label: "7d", span: 7 * 24 * time.Hour},
	{label: "1d", span: 24 * time.Hour},
}

// fetchVegetation walks the look-back windows in order and normalizes the
// first usable NDVI history it finds. Empty responses and transport failures
// are both treated as "try the next window"; the windows are attempted
// sequentially so no further calls happen once one succeeds. Exhausting every
// window yields all-nil stats: vegetation data unavailable, not a request
// failure.
func (s *Service) fetchVegetation(ctx context.Context, polygonID string) domain.VegetationStats {
	end := s.clock.Now()

	for _, w := range lookbackWindows {
		entries, err := s.vegetation.FetchNDVIHistory(ctx, polygonID, end.Add(-w.span), end)
		if err != nil {
			s.logger.Warn("ndvi history fetch failed",
				"polygon_id", polygonID, "window", w.label, "error", err)
			s.metrics.NDVIRequests.WithLabelValues(w.label, "error").Inc()
			continue
		}
		if !domain.HasUsableNDVI(entries) {
			s.metrics.NDVIRequests.WithLabelValues(w.label, "empty").Inc()
			continue
		}
		s.metrics.NDVIRequests.WithLabelValues(w.label, "usable").Inc()
		s.metrics.NDVIWindowUsed.WithLabelValues(w.label).Inc()
		return domain.ExtractVegetationStats(entries)
	}

	s.logger.Warn("vegetation data unavailable in any window", "polygon_id", polygonID)
	s.metrics.NDVIWindowUsed.WithLabelValues("none").Inc()
	return domain.VegetationStats{}
}
