// Package consistency scores how repeatable a driver is: finishing
// reliability relative to the teammate, qualifying variance and points
// scoring against what the car should deliver.
package consistency

import (
	"context"
	"math"

	"github.com/samber/lo"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
	"github.com/racingdecoded/driver-dna-go/pkg/stats"
)

const (
	weightReliability = 0.40
	weightQualifying  = 0.35
	weightPoints      = 0.25

	minQualiSamples = 5
)

var expectedPointsRate = map[string]float64{
	processing.BucketTop:        0.8,
	processing.BucketMidfield:   0.4,
	processing.BucketBackmarker: 0.1,
}

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
	ret := &Calculator{minRaces: 15}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (c *Calculator) Trait() string { return model.TraitConsistency }
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

	components := make([]model.ComponentResult, 0, 3)
	if comp := c.finishingReliability(ctx, history); comp != nil {
		components = append(components, *comp)
	}
	if comp := c.qualifyingConsistency(history); comp != nil {
		components = append(components, *comp)
	}
	if comp := c.pointsReliability(history); comp != nil {
		components = append(components, *comp)
	}
	return processing.Combine(c.Trait(), total, components)
}

//nolint:whitespace // editor/linter
func (c *Calculator) finishingReliability(
	ctx context.Context, history *model.DriverRaceHistory,
) *model.ComponentResult {
	total := len(history.Races)
	if total == 0 {
		return nil
	}
	dnfs := lo.CountBy(history.Races, func(r model.RaceEntry) bool { return r.IsDnf() })
	dnfRate := stats.Rate(dnfs, total)
	baseScore := (1 - dnfRate) * 100

	teammateRate := c.teammateDnfRate(ctx, history)
	relative := 0.0
	if teammateRate > stats.Epsilon {
		relative = (teammateRate - dnfRate) / teammateRate
	}
	score := stats.Clamp(baseScore+relative*20, 0, 100)

	compStats := model.NewComponentStats("consistency/finishing_reliability@1").
		Set("dnf_rate", dnfRate).
		Set("teammate_dnf_rate", teammateRate).
		Set("relative_reliability", relative).
		Set("base_score", baseScore).
		Set("total_races", float64(total))
	return &model.ComponentResult{
		Name:     "finishing_reliability",
		Weight:   weightReliability,
		RawValue: dnfRate,
		Score:    score,
		Stats:    compStats,
	}
}

// teammateDnfRate averages the per-season teammate DNF rates weighted by the
// driver's races in each season. Lookup failures degrade to 0, which zeroes
// the relative term.
func (c *Calculator) teammateDnfRate(ctx context.Context, history *model.DriverRaceHistory) float64 {
	if c.source == nil {
		return 0
	}
	weightedSum, weights := 0.0, 0.0
	for _, season := range history.Seasons() {
		races := len(history.SeasonView(season).Races)
		rate, err := c.source.TeammateDnfRate(ctx, history.DriverID, season)
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

func (c *Calculator) qualifyingConsistency(history *model.DriverRaceHistory) *model.ComponentResult {
	positions := make([]float64, 0, len(history.Races))
	for i := range history.Races {
		if history.Races[i].Qualifying != nil {
			positions = append(positions, float64(*history.Races[i].Qualifying))
		}
	}
	if len(positions) < minQualiSamples {
		return nil
	}

	cv, ok := stats.CoefficientOfVariation(positions)
	consistencyScore := 0.0 // undefined cv counts as maximal variability
	if ok {
		consistencyScore = stats.Clamp(100-cv*100, 0, 100)
	}

	diffs := make([]float64, 0, len(positions)-1)
	for i := 1; i < len(positions); i++ {
		diffs = append(diffs, math.Abs(positions[i]-positions[i-1]))
	}
	consecutiveScore := stats.Clamp(100-stats.Mean(diffs)*5, 0, 100)

	score := stats.Clamp(consistencyScore*0.7+consecutiveScore*0.3, 0, 100)

	compStats := model.NewComponentStats("consistency/qualifying@1").
		Set("coefficient_of_variation", cv).
		Set("consistency_score", consistencyScore).
		Set("consecutive_score", consecutiveScore).
		Set("qualifying_samples", float64(len(positions)))
	return &model.ComponentResult{
		Name:     "qualifying_consistency",
		Weight:   weightQualifying,
		RawValue: cv,
		Score:    score,
		Stats:    compStats,
	}
}

func (c *Calculator) pointsReliability(history *model.DriverRaceHistory) *model.ComponentResult {
	finished := lo.Filter(history.Races, func(r model.RaceEntry, _ int) bool {
		return r.Finished()
	})
	if len(finished) == 0 {
		return nil
	}
	scoring := lo.CountBy(finished, func(r model.RaceEntry) bool { return r.Points > 0 })
	pointsRate := stats.Rate(scoring, len(finished))

	avgPoints := stats.Mean(lo.Map(history.Races, func(r model.RaceEntry, _ int) float64 {
		return r.Points
	}))
	bucket := c.policy.Bucket(mainConstructor(history), avgPoints)
	expected := expectedPointsRate[bucket]

	ratio := 0.0
	if expected > stats.Epsilon {
		ratio = pointsRate / expected
	}
	score := stats.Clamp(ratio*50+25, 0, 100)

	compStats := model.NewComponentStats("consistency/points_reliability@1").
		Set("points_rate", pointsRate).
		Set("expected_rate", expected).
		Set("reliability_ratio", ratio).
		Set("finished_races", float64(len(finished)))
	return &model.ComponentResult{
		Name:     "points_reliability",
		Weight:   weightPoints,
		RawValue: pointsRate,
		Score:    score,
		Stats:    compStats,
	}
}

// mainConstructor returns the constructor the driver raced for most often.
func mainConstructor(history *model.DriverRaceHistory) string {
	counts := lo.CountValuesBy(history.Races, func(r model.RaceEntry) string {
		return r.ConstructorRef
	})
	best, bestCount := "", 0
	for ref, n := range counts {
		if n > bestCount || (n == bestCount && ref < best) {
			best, bestCount = ref, n
		}
	}
	return best
}
