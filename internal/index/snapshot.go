package index

import (
	"log/slog"
	"time"

	"github.com/basketwatch/indexd/internal/domain"
)

// SnapshotBuilder normalizes raw exchange records into Markets.
type SnapshotBuilder struct {
	logger *slog.Logger
}

// NewSnapshotBuilder creates a SnapshotBuilder.
func NewSnapshotBuilder(logger *slog.Logger) *SnapshotBuilder {
	return &SnapshotBuilder{
		logger: logger.With(slog.String("component", "snapshot_builder")),
	}
}

// Build converts one raw provider record into a normalized Market as of now.
// Price is the mean of the record's position-token prices (0 when there are
// none), the category defaults to "General", and the position defaults to the
// first token's name. A missing or malformed end date yields zero remaining
// hours; it is logged, never an error. Proportion is set to 1 and overwritten
// by the compositor once the constituent count is known.
func (b *SnapshotBuilder) Build(provider string, rec domain.ExchangeRecord, now time.Time) domain.Market {
	m := domain.Market{
		ID:          rec.ID,
		Name:        rec.Title,
		Category:    rec.GroupTitle,
		Description: rec.Description,
		Icon:        rec.Icon,
		Proportion:  1,
		Position:    "Unknown",
	}
	if m.Category == "" {
		m.Category = "General"
	}

	if len(rec.Tokens) > 0 {
		var sum float64
		for _, t := range rec.Tokens {
			sum += t.Price
		}
		m.Price = sum / float64(len(rec.Tokens))
		m.Position = rec.Tokens[0].Name
	}

	if rec.EndDate != "" {
		end, err := time.Parse(time.RFC3339, rec.EndDate)
		if err != nil {
			b.logger.Warn("unparseable market end date",
				slog.String("provider", provider),
				slog.String("market_id", rec.ID),
				slog.String("end_date", rec.EndDate),
			)
		} else {
			m.EndDate = end
			if hours := end.Sub(now).Hours(); hours > 0 {
				m.RemainingHours = hours
			}
		}
	}

	return m
}
