// Package racecraft scores wheel-to-wheel ability from lap-by-lap position
// traces: overtake quality adjusted for track difficulty, defensive position
// holding, incident avoidance relative to the era, and race-day execution.
package racecraft

import (
	"context"

	"github.com/samber/lo"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
	"github.com/racingdecoded/driver-dna-go/pkg/stats"
)

const (
	weightOvertaking = 0.35
	weightDefensive  = 0.25
	weightCombat     = 0.25
	weightStrategic  = 0.15

	minLapsPerRace      = 5
	minLapsForDefensive = 10
)

type Calculator struct {
	minRaces int
	source   processing.DataSource
	policy   *processing.Policy
}

type Option func(c *Calculator)

func WithMinRaces(n int) Option {
	return func(c *Calculator) { c.minRaces = n }
}

func WithDataSource(src processing.DataSource) Option {
	return func(c *Calculator) { c.source = src }
}

func WithPolicy(p *processing.Policy) Option {
	return func(c *Calculator) { c.policy = p }
}

func New(opts ...Option) *Calculator {
	ret := &Calculator{minRaces: 20}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (c *Calculator) Trait() string { return model.TraitRacecraft }
func (c *Calculator) MinRaces() int { return c.minRaces }

//nolint:whitespace // editor/linter
func (c *Calculator) Calculate(
	ctx context.Context, history *model.DriverRaceHistory,
) (*model.TraitScore, error) {
	total := len(history.Races)
	if total < c.minRaces {
		return nil, &processing.InsufficientDataError{
			Trait: c.Trait(), Races: total, Required: c.minRaces,
		}
	}

	components := make([]model.ComponentResult, 0, 4)
	if comp := c.overtakingQuality(history); comp != nil {
		components = append(components, *comp)
	}
	if comp := c.defensiveDriving(history); comp != nil {
		components = append(components, *comp)
	}
	if comp := c.wheelToWheel(ctx, history); comp != nil {
		components = append(components, *comp)
	}
	if comp := c.strategicIntelligence(history); comp != nil {
		components = append(components, *comp)
	}
	return processing.Combine(c.Trait(), total, components)
}

// positionDiffs returns lap-over-lap position changes for one race
// (negative = place gained).
func positionDiffs(laps []model.LapRecord) []float64 {
	diffs := make([]float64, 0, len(laps))
	for i := 1; i < len(laps); i++ {
		diffs = append(diffs, float64(laps[i].Position-laps[i-1].Position))
	}
	return diffs
}

func (c *Calculator) overtakingQuality(history *model.DriverRaceHistory) *model.ComponentResult {
	raceScores := make([]float64, 0, len(history.Races))
	for i := range history.Races {
		r := &history.Races[i]
		laps := history.Laps[r.RaceID]
		if len(laps) < minLapsPerRace {
			continue
		}
		overtakeGains := lo.FilterMap(positionDiffs(laps), func(d float64, _ int) (float64, bool) {
			return -d, d < 0
		})
		if len(overtakeGains) == 0 {
			continue
		}
		overtakes := float64(len(overtakeGains))
		avgGain := stats.Mean(overtakeGains)
		maxGain := lo.Max(overtakeGains)
		difficulty := c.policy.Difficulty(r.CircuitRef)
		raceScores = append(raceScores,
			(overtakes*10+avgGain*15+maxGain*5)*difficulty)
	}
	if len(raceScores) == 0 {
		return nil
	}
	avgScore := stats.Mean(raceScores)
	consistencyBonus := stats.Clamp(20-stats.StdDev(raceScores), 0, 20)
	score := stats.Clamp(avgScore+consistencyBonus, 0, 100)

	compStats := model.NewComponentStats("racecraft/overtaking_quality@1").
		Set("avg_race_score", avgScore).
		Set("consistency_bonus", consistencyBonus).
		Set("races_with_data", float64(len(raceScores)))
	return &model.ComponentResult{
		Name:     "overtaking_quality",
		Weight:   weightOvertaking,
		RawValue: avgScore,
		Score:    score,
		Stats:    compStats,
	}
}

func (c *Calculator) defensiveDriving(history *model.DriverRaceHistory) *model.ComponentResult {
	raceScores := make([]float64, 0, len(history.Races))
	for i := range history.Races {
		laps := history.Laps[history.Races[i].RaceID]
		if len(laps) <= minLapsForDefensive {
			continue
		}
		diffs := positionDiffs(laps)
		held := lo.CountBy(diffs, func(d float64) bool { return d == 0 })
		lost := lo.CountBy(diffs, func(d float64) bool { return d > 0 })
		totalLaps := len(laps)

		defensiveRatio := stats.Rate(held, totalLaps)
		pressureResistance := stats.Clamp(1-stats.Rate(lost, totalLaps), 0, 1)
		raceScores = append(raceScores, defensiveRatio*50+pressureResistance*50)
	}
	if len(raceScores) == 0 {
		return nil
	}
	avg := stats.Mean(raceScores)

	compStats := model.NewComponentStats("racecraft/defensive_driving@1").
		Set("avg_race_score", avg).
		Set("races_with_data", float64(len(raceScores)))
	return &model.ComponentResult{
		Name:     "defensive_driving",
		Weight:   weightDefensive,
		RawValue: avg,
		Score:    stats.Clamp(avg, 0, 100),
		Stats:    compStats,
	}
}

//nolint:whitespace // editor/linter
func (c *Calculator) wheelToWheel(
	ctx context.Context, history *model.DriverRaceHistory,
) *model.ComponentResult {
	total := len(history.Races)
	if total == 0 {
		return nil
	}
	dnfs := lo.CountBy(history.Races, func(r model.RaceEntry) bool { return r.IsDnf() })
	dnfRate := stats.Rate(dnfs, total)

	eraRate := c.eraDnfRate(ctx, history)
	reliabilityFactor := 1 - dnfRate
	if eraRate > stats.Epsilon {
		reliabilityFactor = 1 - dnfRate/eraRate
	}

	changes := make([]float64, 0, total)
	for i := range history.Races {
		r := &history.Races[i]
		if r.Grid == nil || r.Finish == nil {
			continue
		}
		changes = append(changes, float64(*r.Grid-*r.Finish))
	}
	positionFactor := stats.Clamp(stats.Mean(changes)/5, -1, 1)

	score := stats.Clamp(50+reliabilityFactor*25+positionFactor*25, 0, 100)

	compStats := model.NewComponentStats("racecraft/wheel_to_wheel@1").
		Set("dnf_rate", dnfRate).
		Set("era_dnf_rate", eraRate).
		Set("reliability_factor", reliabilityFactor).
		Set("position_factor", positionFactor)
	return &model.ComponentResult{
		Name:     "wheel_to_wheel",
		Weight:   weightCombat,
		RawValue: reliabilityFactor,
		Score:    score,
		Stats:    compStats,
	}
}

// eraDnfRate averages the per-season cohort DNF rates over the driver's
// active seasons, weighted by races driven in each.
func (c *Calculator) eraDnfRate(ctx context.Context, history *model.DriverRaceHistory) float64 {
	if c.source == nil {
		return 0
	}
	weightedSum, weights := 0.0, 0.0
	for _, season := range history.Seasons() {
		races := len(history.SeasonView(season).Races)
		rate, err := c.source.EraAverageDnfRate(ctx, season)
		if err != nil {
			continue
		}
		weightedSum += rate * float64(races)
		weights += float64(races)
	}
	if weights == 0 {
		return 0
	}
	return weightedSum / weights
}

func (c *Calculator) strategicIntelligence(history *model.DriverRaceHistory) *model.ComponentResult {
	changes := make([]float64, 0, len(history.Races))
	for i := range history.Races {
		r := &history.Races[i]
		if r.Qualifying == nil || r.Finish == nil {
			continue
		}
		changes = append(changes, float64(*r.Qualifying-*r.Finish))
	}
	if len(changes) == 0 {
		return nil
	}
	avgImprovement := stats.Mean(changes)
	consistency := 1 / (1 + stats.StdDev(changes))
	score := stats.Clamp(50+avgImprovement*8+consistency*20, 0, 100)

	compStats := model.NewComponentStats("racecraft/strategic_intelligence@1").
		Set("avg_improvement", avgImprovement).
		Set("consistency", consistency).
		Set("races_with_data", float64(len(changes)))
	return &model.ComponentResult{
		Name:     "strategic_intelligence",
		Weight:   weightStrategic,
		RawValue: avgImprovement,
		Score:    score,
		Stats:    compStats,
	}
}
