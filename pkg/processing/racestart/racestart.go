// Package racestart scores opening-lap performance from grid-to-lap-1
// position changes. The lowest eligibility threshold of the five traits,
// since it only needs first-lap data.
package racestart

import (
	"context"
	"math"

	"github.com/samber/lo"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
	"github.com/racingdecoded/driver-dna-go/pkg/stats"
)

const (
	// changes beyond this are treated as lap-1 incidents, not starts
	incidentThreshold = 10
	minCleanStarts    = 3
)

type Calculator struct {
	minRaces int
}

type Option func(c *Calculator)

func WithMinRaces(n int) Option {
	return func(c *Calculator) { c.minRaces = n }
}

func New(opts ...Option) *Calculator {
	ret := &Calculator{minRaces: 5}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (c *Calculator) Trait() string { return model.TraitRaceStart }
func (c *Calculator) MinRaces() int { return c.minRaces }

//nolint:whitespace // editor/linter
func (c *Calculator) Calculate(
	_ context.Context, history *model.DriverRaceHistory,
) (*model.TraitScore, error) {
	changes := make([]float64, 0, len(history.Races))
	for i := range history.Races {
		r := &history.Races[i]
		lap1 := history.Lap1Position(r.RaceID)
		if r.Grid == nil || lap1 == nil {
			continue
		}
		// positive = positions lost at the start
		changes = append(changes, float64(*lap1-*r.Grid))
	}
	if len(changes) < c.minRaces {
		return nil, &processing.InsufficientDataError{
			Trait: c.Trait(), Races: len(changes), Required: c.minRaces,
		}
	}

	clean := lo.Filter(changes, func(d float64, _ int) bool {
		return math.Abs(d) <= incidentThreshold
	})
	if len(clean) < minCleanStarts {
		return nil, &processing.InsufficientDataError{
			Trait: c.Trait(), Races: len(clean), Required: minCleanStarts,
		}
	}

	avgChange := stats.Mean(clean)
	gainRate := stats.Rate(lo.CountBy(clean, func(d float64) bool { return d < 0 }), len(clean))
	lossRate := stats.Rate(lo.CountBy(clean, func(d float64) bool { return d > 0 }), len(clean))

	baseScore := 50 + avgChange*(-10)
	frequencyBonus := (gainRate - lossRate) * 20
	score := stats.Clamp(baseScore+frequencyBonus, 0, 100)

	compStats := model.NewComponentStats("race_start/launch@1").
		Set("avg_position_change", avgChange).
		Set("gain_rate", gainRate).
		Set("loss_rate", lossRate).
		Set("base_score", baseScore).
		Set("frequency_bonus", frequencyBonus).
		Set("clean_starts", float64(len(clean))).
		Set("starts_with_data", float64(len(changes)))

	return processing.Combine(c.Trait(), len(history.Races), []model.ComponentResult{
		{
			Name:     "launch",
			Weight:   1.0,
			RawValue: avgChange,
			Score:    score,
			Stats:    compStats,
		},
	})
}
