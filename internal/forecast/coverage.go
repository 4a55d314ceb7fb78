package forecast

import (
	"encoding/json"
	"math"
)

// MaxCoverageDays caps finite projections.
const MaxCoverageDays = 999.0

type CoverageKind string

const (
	CoverageFinite       CoverageKind = "finite"
	CoverageInfinite     CoverageKind = "infinite"
	CoverageInsufficient CoverageKind = "insufficient"
)

// Coverage is how long current stock lasts at the observed consumption rate.
// Days is only meaningful for finite coverage.
type Coverage struct {
	Kind CoverageKind
	Days float64
}

func Finite(days float64) Coverage {
	if days < 0 {
		days = 0
	}
	if days > MaxCoverageDays {
		days = MaxCoverageDays
	}
	return Coverage{Kind: CoverageFinite, Days: days}
}

func Infinite() Coverage {
	return Coverage{Kind: CoverageInfinite}
}

func Insufficient() Coverage {
	return Coverage{Kind: CoverageInsufficient}
}

func (c Coverage) IsFinite() bool {
	return c.Kind == CoverageFinite
}

// Less orders finite coverage by days, then insufficient, then infinite.
func (c Coverage) Less(other Coverage) bool {
	if c.rank() != other.rank() {
		return c.rank() < other.rank()
	}
	return c.IsFinite() && c.Days < other.Days
}

func (c Coverage) rank() int {
	switch c.Kind {
	case CoverageFinite:
		return 0
	case CoverageInsufficient:
		return 1
	}
	return 2
}

func (c Coverage) MarshalJSON() ([]byte, error) {
	payload := struct {
		Kind CoverageKind `json:"kind"`
		Days *float64     `json:"days,omitempty"`
	}{Kind: c.Kind}
	if c.IsFinite() {
		days := math.Round(c.Days*100) / 100
		payload.Days = &days
	}
	return json.Marshal(payload)
}
