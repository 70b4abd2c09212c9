package valuation

import (
	"fmt"
	"time"
)

const SourceScraper = "scraper"

// Record is an append-only point of a player's auction value time series.
type Record struct {
	PlayerID   string
	Value      float64
	Source     string
	RecordedAt time.Time
}

func (r Record) Validate() error {
	if r.PlayerID == "" {
		return fmt.Errorf("valuation player id is required")
	}
	if r.Source == "" {
		return fmt.Errorf("valuation source is required")
	}

	return nil
}
