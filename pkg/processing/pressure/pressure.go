// Package pressure scores performance in high-stakes situations: racing
// while in title contention, season run-ins, must-win weekends and recovery
// drives from deep grid positions.
//
// Each sub-component has its own minimum sample size. A sub-component that
// cannot meet it is skipped and the remaining weights are renormalized, so
// the effective denominator of the trait changes with data availability.
package pressure

import (
	"context"

	"github.com/samber/lo"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
	"github.com/racingdecoded/driver-dna-go/pkg/stats"
)

const (
	weightChampionship = 0.40
	weightSeasonEnding = 0.25
	weightMustWin      = 0.20
	weightRecovery     = 0.15

	contentionStanding = 3  // top-3 in standings = title contention
	desperateStanding  = 5  // 5th or lower = must-win territory
	backOfGridStart    = 15 // grid 15+ counts as a recovery drive
	finalRaceCount     = 3  // season run-in length

	minHighPressure = 3
	minBaseline     = 5
	minFinals       = 3
	minDesperate    = 5
	minPoorStarts   = 3
)

type Calculator struct {
	minRaces int
	source   processing.DataSource
}

type Option func(c *Calculator)

func WithMinRaces(n int) Option {
	return func(c *Calculator) { c.minRaces = n }
}

func WithDataSource(src processing.DataSource) Option {
	return func(c *Calculator) { c.source = src }
}

func New(opts ...Option) *Calculator {
	ret := &Calculator{minRaces: 20}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (c *Calculator) Trait() string { return model.TraitPressure }
func (c *Calculator) MinRaces() int { return c.minRaces }

// raceContext pairs a finished race with the championship standing after it.
type raceContext struct {
	race     *model.RaceEntry
	standing *int
}

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

	contexts := c.standingContexts(ctx, history)

	components := make([]model.ComponentResult, 0, 4)
	if comp := c.championshipPressure(contexts); comp != nil {
		components = append(components, *comp)
	}
	if comp := c.seasonEnding(history); comp != nil {
		components = append(components, *comp)
	}
	if comp := c.mustWin(contexts); comp != nil {
		components = append(components, *comp)
	}
	if comp := c.recovery(history); comp != nil {
		components = append(components, *comp)
	}
	return processing.Combine(c.Trait(), total, components)
}

// standingContexts resolves the championship standing after each finished
// race. Lookup failures leave the standing nil, excluding the race from the
// standings-based sub-components.
func (c *Calculator) standingContexts(
	ctx context.Context, history *model.DriverRaceHistory,
) []raceContext {
	contexts := make([]raceContext, 0, len(history.Races))
	for i := range history.Races {
		r := &history.Races[i]
		if r.Finish == nil {
			continue
		}
		rc := raceContext{race: r}
		if c.source != nil {
			if pos, err := c.source.StandingPosition(ctx, history.DriverID, r.Season, r.Round); err == nil {
				rc.standing = pos
			}
		}
		contexts = append(contexts, rc)
	}
	return contexts
}

func (c *Calculator) championshipPressure(contexts []raceContext) *model.ComponentResult {
	var highPressure, normal []float64
	for _, rc := range contexts {
		if rc.standing == nil {
			continue
		}
		finish := float64(*rc.race.Finish)
		if *rc.standing <= contentionStanding {
			highPressure = append(highPressure, finish)
		} else {
			normal = append(normal, finish)
		}
	}
	if len(highPressure) < minHighPressure || len(normal) < minBaseline {
		return nil
	}
	// negative effect = better average finish under pressure
	effect := stats.Mean(highPressure) - stats.Mean(normal)
	score := stats.Piecewise(effect, []stats.Case{
		{
			When: func(x float64) bool { return x < -2 },
			Then: func(x float64) float64 { return 80 + (-x-2)*3 },
		},
		{
			When: func(x float64) bool { return x < 0 },
			Then: func(x float64) float64 { return 60 + -x*10 },
		},
		{
			When: func(x float64) bool { return x < 2 },
			Then: func(x float64) float64 { return 50 - x*5 },
		},
	}, func(x float64) float64 {
		return max(10, 40-(x-2)*5)
	})

	compStats := model.NewComponentStats("pressure/championship@1").
		Set("high_pressure_avg_finish", stats.Mean(highPressure)).
		Set("normal_avg_finish", stats.Mean(normal)).
		Set("pressure_effect", effect).
		Set("high_pressure_races", float64(len(highPressure))).
		Set("normal_races", float64(len(normal)))
	return &model.ComponentResult{
		Name:     "championship_pressure",
		Weight:   weightChampionship,
		RawValue: effect,
		Score:    stats.Clamp(score, 0, 100),
		Stats:    compStats,
	}
}

func (c *Calculator) seasonEnding(history *model.DriverRaceHistory) *model.ComponentResult {
	finalRounds := make(map[int]int) // season -> first round of the run-in
	for _, season := range history.Seasons() {
		maxRound := 0
		for i := range history.Races {
			if history.Races[i].Season == season && history.Races[i].Round > maxRound {
				maxRound = history.Races[i].Round
			}
		}
		finalRounds[season] = maxRound - finalRaceCount + 1
	}

	var finals, normal []float64
	for i := range history.Races {
		r := &history.Races[i]
		if r.Finish == nil {
			continue
		}
		if r.Round >= finalRounds[r.Season] {
			finals = append(finals, float64(*r.Finish))
		} else {
			normal = append(normal, float64(*r.Finish))
		}
	}
	if len(finals) < minFinals || len(normal) < minBaseline {
		return nil
	}
	// positive diff = better at season end
	diff := stats.Mean(normal) - stats.Mean(finals)
	score := stats.Piecewise(diff, []stats.Case{
		{
			When: func(x float64) bool { return x > 2 },
			Then: func(x float64) float64 { return min(95, 70+x*5) },
		},
		{
			When: func(x float64) bool { return x > 0 },
			Then: func(x float64) float64 { return 50 + x*10 },
		},
	}, func(x float64) float64 {
		return max(20, 50+x*8)
	})

	compStats := model.NewComponentStats("pressure/season_ending@1").
		Set("final_races_avg_finish", stats.Mean(finals)).
		Set("season_avg_finish", stats.Mean(normal)).
		Set("performance_diff", diff).
		Set("final_races", float64(len(finals)))
	return &model.ComponentResult{
		Name:     "season_ending",
		Weight:   weightSeasonEnding,
		RawValue: diff,
		Score:    stats.Clamp(score, 0, 100),
		Stats:    compStats,
	}
}

func (c *Calculator) mustWin(contexts []raceContext) *model.ComponentResult {
	withStanding := lo.Filter(contexts, func(rc raceContext, _ int) bool {
		return rc.standing != nil
	})
	desperate := lo.Filter(withStanding, func(rc raceContext, _ int) bool {
		return *rc.standing >= desperateStanding
	})
	if len(desperate) < minDesperate {
		return nil
	}
	podium := func(rc raceContext) bool { return *rc.race.Finish <= 3 }
	desperateRate := stats.Rate(lo.CountBy(desperate, podium), len(desperate))
	overallRate := stats.Rate(lo.CountBy(withStanding, podium), len(withStanding))

	factor := 1.0 // no podiums at all: neither clutch nor choker
	if overallRate > stats.Epsilon {
		factor = desperateRate / overallRate
	}
	score := stats.Piecewise(factor, []stats.Case{
		{
			When: func(x float64) bool { return x > 1.5 },
			Then: func(x float64) float64 { return min(90, 60+(x-1)*30) },
		},
		{
			When: func(x float64) bool { return x > 1.0 },
			Then: func(x float64) float64 { return 50 + (x-1)*20 },
		},
	}, func(x float64) float64 {
		return max(20, 50*x)
	})

	compStats := model.NewComponentStats("pressure/must_win@1").
		Set("desperate_podium_rate", desperateRate).
		Set("overall_podium_rate", overallRate).
		Set("desperation_factor", factor).
		Set("desperate_races", float64(len(desperate)))
	return &model.ComponentResult{
		Name:     "must_win",
		Weight:   weightMustWin,
		RawValue: factor,
		Score:    stats.Clamp(score, 0, 100),
		Stats:    compStats,
	}
}

func (c *Calculator) recovery(history *model.DriverRaceHistory) *model.ComponentResult {
	poorStarts := lo.Filter(history.Races, func(r model.RaceEntry, _ int) bool {
		return r.Grid != nil && *r.Grid >= backOfGridStart
	})
	if len(poorStarts) < minPoorStarts {
		return nil
	}
	pointsFinishes := lo.CountBy(poorStarts, func(r model.RaceEntry) bool {
		return r.Finish != nil && *r.Finish <= 10
	})
	recoveryRate := stats.Rate(pointsFinishes, len(poorStarts))

	gains := make([]float64, 0, len(poorStarts))
	for i := range poorStarts {
		r := &poorStarts[i]
		if r.Qualifying == nil || r.Finish == nil {
			continue
		}
		gains = append(gains, float64(*r.Qualifying-*r.Finish))
	}
	avgGain := stats.Mean(gains)
	score := recoveryRate*40 + stats.Clamp(avgGain*2, 0, 40) + 20

	compStats := model.NewComponentStats("pressure/recovery@1").
		Set("recovery_rate", recoveryRate).
		Set("avg_gain_from_back", avgGain).
		Set("poor_starts", float64(len(poorStarts)))
	return &model.ComponentResult{
		Name:     "recovery",
		Weight:   weightRecovery,
		RawValue: recoveryRate,
		Score:    stats.Clamp(score, 0, 100),
		Stats:    compStats,
	}
}
