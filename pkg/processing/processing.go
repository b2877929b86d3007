// Package processing holds the contract shared by the five DNA trait
// calculators plus the helpers to combine weighted components into a final
// trait score.
package processing

import (
	"context"
	"fmt"
	"strings"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/stats"
)

// Calculator computes one DNA trait from a driver's race history.
// Implementations must not mutate the history and must return an
// InsufficientDataError (never a zero score) when the eligible race count is
// below the trait's minimum.
type Calculator interface {
	Trait() string
	MinRaces() int
	Calculate(ctx context.Context, history *model.DriverRaceHistory) (*model.TraitScore, error)
}

// DataSource provides the peer-group context the calculators cannot derive
// from a single driver's history.
type DataSource interface {
	TeammateDnfRate(ctx context.Context, driverID, season int) (float64, error)
	EraAverageDnfRate(ctx context.Context, season int) (float64, error)
	// StandingPosition returns the championship position after the given
	// round, nil when no standings are recorded.
	StandingPosition(ctx context.Context, driverID, season, afterRound int) (*int, error)
}

// Bucket names for car competitiveness.
const (
	BucketTop        = "top"
	BucketMidfield   = "midfield"
	BucketBackmarker = "backmarker"
)

// Policy carries the externally configurable scoring tables.
type Policy struct {
	TrackDifficulty    map[string]float64
	CarCompetitiveness map[string]string
}

// Difficulty returns the overtaking difficulty multiplier for a circuit,
// 1.0 when unlisted.
func (p *Policy) Difficulty(circuitRef string) float64 {
	if p == nil {
		return 1.0
	}
	if m, ok := p.TrackDifficulty[circuitRef]; ok {
		return m
	}
	return 1.0
}

// Bucket returns the configured competitiveness bucket for a constructor.
// When the constructor is unmapped, it estimates the bucket from the average
// points per race in the given history.
func (p *Policy) Bucket(constructorRef string, avgPoints float64) string {
	if p != nil {
		if b, ok := p.CarCompetitiveness[constructorRef]; ok {
			return b
		}
	}
	switch {
	case avgPoints >= 6:
		return BucketTop
	case avgPoints >= 1:
		return BucketMidfield
	default:
		return BucketBackmarker
	}
}

// Combine folds the present components into a trait score. Weights are
// renormalized over the components actually present, so a skipped
// sub-component changes the effective denominator instead of dragging the
// score toward zero.
func Combine(trait string, racesAnalyzed int, components []model.ComponentResult) (
	*model.TraitScore, error,
) {
	if len(components) == 0 {
		return nil, &InsufficientDataError{Trait: trait, Races: racesAnalyzed}
	}
	totalWeight := 0.0
	for i := range components {
		totalWeight += components[i].Weight
	}
	if totalWeight < stats.Epsilon {
		return nil, fmt.Errorf("trait %s: component weights sum to zero", trait)
	}
	raw := 0.0
	for i := range components {
		raw += components[i].Score * (components[i].Weight / totalWeight)
	}
	final := stats.Clamp(raw, 0, 100)
	return &model.TraitScore{
		Trait:         trait,
		Score:         &final,
		RawValue:      raw,
		Components:    components,
		Notes:         calculationNotes(components),
		RacesAnalyzed: racesAnalyzed,
	}, nil
}

func calculationNotes(components []model.ComponentResult) string {
	notes := make([]string, 0, len(components))
	for i := range components {
		notes = append(notes,
			fmt.Sprintf("%s: %.1f", components[i].Name, components[i].Score))
	}
	return strings.Join(notes, "; ")
}
