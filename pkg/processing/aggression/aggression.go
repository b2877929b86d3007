// Package aggression scores a driver's attacking style: positions gained
// race-long, on the opening lap and in the closing stages.
package aggression

import (
	"context"

	"github.com/samber/lo"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
	"github.com/racingdecoded/driver-dna-go/pkg/stats"
)

const (
	weightOvertaking = 0.40
	weightFirstLap   = 0.35
	weightLateRace   = 0.25

	lateRaceFraction = 0.8
	minLapsForLate   = 10
)

type Calculator struct {
	minRaces int
}

type Option func(c *Calculator)

func WithMinRaces(n int) Option {
	return func(c *Calculator) { c.minRaces = n }
}

func New(opts ...Option) *Calculator {
	ret := &Calculator{minRaces: 15}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (c *Calculator) Trait() string { return model.TraitAggression }
func (c *Calculator) MinRaces() int { return c.minRaces }

//nolint:whitespace // editor/linter
func (c *Calculator) Calculate(
	_ context.Context, history *model.DriverRaceHistory,
) (*model.TraitScore, error) {
	total := len(history.Races)
	if total < c.minRaces {
		return nil, &processing.InsufficientDataError{
			Trait: c.Trait(), Races: total, Required: c.minRaces,
		}
	}

	components := make([]model.ComponentResult, 0, 3)
	if comp := c.overtakingRate(history); comp != nil {
		components = append(components, *comp)
	}
	if comp := c.firstLap(history); comp != nil {
		components = append(components, *comp)
	}
	if comp := c.lateRace(history); comp != nil {
		components = append(components, *comp)
	}
	return processing.Combine(c.Trait(), total, components)
}

// overtakingRate rewards positions gained from qualifying to the flag.
// DNFs are excluded from the position arithmetic but still count toward the
// frequency denominator.
func (c *Calculator) overtakingRate(history *model.DriverRaceHistory) *model.ComponentResult {
	total := len(history.Races)
	gains := make([]float64, 0, total)
	for i := range history.Races {
		r := &history.Races[i]
		if r.Qualifying == nil || r.Finish == nil {
			continue
		}
		gains = append(gains, float64(*r.Qualifying-*r.Finish))
	}
	if len(gains) == 0 {
		return nil
	}
	avgGain := stats.Mean(gains)
	racesWithGain := lo.CountBy(gains, func(g float64) bool { return g > 0 })
	gainFrequency := stats.Rate(racesWithGain, total)
	peakGain := lo.Max(gains)

	gainScore := stats.Clamp(avgGain*10+50, 0, 100)
	freqScore := gainFrequency * 100
	peakScore := stats.Clamp(peakGain*5, 0, 100)
	score := gainScore*0.5 + freqScore*0.3 + peakScore*0.2

	compStats := model.NewComponentStats("aggression/overtaking_rate@1").
		Set("avg_positions_gained", avgGain).
		Set("gain_frequency", gainFrequency).
		Set("peak_gain", peakGain).
		Set("gain_score", gainScore).
		Set("frequency_score", freqScore).
		Set("peak_score", peakScore).
		Set("races_with_data", float64(len(gains)))
	return &model.ComponentResult{
		Name:     "overtaking_rate",
		Weight:   weightOvertaking,
		RawValue: avgGain,
		Score:    stats.Clamp(score, 0, 100),
		Stats:    compStats,
	}
}

func (c *Calculator) firstLap(history *model.DriverRaceHistory) *model.ComponentResult {
	deltas := make([]float64, 0, len(history.Races))
	for i := range history.Races {
		r := &history.Races[i]
		lap1 := history.Lap1Position(r.RaceID)
		if r.Grid == nil || lap1 == nil {
			continue
		}
		deltas = append(deltas, float64(*r.Grid-*lap1))
	}
	if len(deltas) == 0 {
		return nil
	}
	avgDelta := stats.Mean(deltas)
	aggressive := lo.CountBy(deltas, func(d float64) bool { return d > 1 })
	aggrFreq := stats.Rate(aggressive, len(deltas))

	gainScore := stats.Clamp(avgDelta*15+50, 0, 100)
	score := gainScore*0.7 + aggrFreq*100*0.3

	compStats := model.NewComponentStats("aggression/first_lap@1").
		Set("avg_first_lap_delta", avgDelta).
		Set("aggressive_frequency", aggrFreq).
		Set("gain_score", gainScore).
		Set("races_with_data", float64(len(deltas)))
	return &model.ComponentResult{
		Name:     "first_lap",
		Weight:   weightFirstLap,
		RawValue: avgDelta,
		Score:    stats.Clamp(score, 0, 100),
		Stats:    compStats,
	}
}

// lateRace compares the position at 80% race distance against the final
// classified position. Short races (under 10 laps of data) are skipped.
func (c *Calculator) lateRace(history *model.DriverRaceHistory) *model.ComponentResult {
	deltas := make([]float64, 0, len(history.Races))
	for i := range history.Races {
		r := &history.Races[i]
		laps := history.Laps[r.RaceID]
		if len(laps) < minLapsForLate {
			continue
		}
		latePos := history.PositionAtFraction(r.RaceID, lateRaceFraction)
		if latePos == nil {
			continue
		}
		finalPos := laps[len(laps)-1].Position
		deltas = append(deltas, float64(*latePos-finalPos))
	}
	if len(deltas) == 0 {
		return nil
	}
	avgLateGain := stats.Mean(deltas)
	withGain := lo.CountBy(deltas, func(d float64) bool { return d > 0 })

	gainScore := stats.Clamp(avgLateGain*12+50, 0, 100)
	freqScore := stats.Rate(withGain, len(deltas)) * 100
	score := gainScore*0.6 + freqScore*0.4

	compStats := model.NewComponentStats("aggression/late_race@1").
		Set("avg_late_gain", avgLateGain).
		Set("gain_frequency", stats.Rate(withGain, len(deltas))).
		Set("gain_score", gainScore).
		Set("frequency_score", freqScore).
		Set("races_with_data", float64(len(deltas)))
	return &model.ComponentResult{
		Name:     "late_race_moves",
		Weight:   weightLateRace,
		RawValue: avgLateGain,
		Score:    stats.Clamp(score, 0, 100),
		Stats:    compStats,
	}
}
