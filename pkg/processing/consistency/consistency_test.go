package consistency

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
)

type fakeSource struct {
	teammateRate float64
	err          error
}

func (f *fakeSource) TeammateDnfRate(_ context.Context, _, _ int) (float64, error) {
	return f.teammateRate, f.err
}

func (f *fakeSource) EraAverageDnfRate(_ context.Context, _ int) (float64, error) {
	return 0, nil
}

func (f *fakeSource) StandingPosition(_ context.Context, _, _, _ int) (*int, error) {
	return nil, nil
}

// steadyHistory builds n races qualifying 10th, finishing 5th with points,
// with one DNF when withDnf is set.
func steadyHistory(n int, withDnf bool) *model.DriverRaceHistory {
	h := &model.DriverRaceHistory{
		DriverID: 1,
		Laps:     make(map[int][]model.LapRecord),
		PitStops: make(map[int][]model.PitStopRecord),
	}
	for i := 0; i < n; i++ {
		raceID := i + 1
		quali, finish := 10, 5
		entry := model.RaceEntry{
			RaceID: raceID, Season: 2021, Round: raceID,
			ConstructorRef: "teamx",
			Qualifying:     &quali, Finish: &finish,
			Points: 10, Status: model.StatusFinished,
		}
		if withDnf && i == 0 {
			entry.Finish = nil
			entry.Points = 0
			entry.Status = model.StatusDnf
		}
		h.Races = append(h.Races, entry)
	}
	return h
}

func TestCalculateKnownScores(t *testing.T) {
	h := steadyHistory(15, true)
	calc := New(WithDataSource(&fakeSource{teammateRate: 0.2}))
	score, err := calc.Calculate(context.Background(), h)
	assert.NoError(t, err)
	assert.Len(t, score.Components, 3)

	byName := make(map[string]model.ComponentResult)
	for _, comp := range score.Components {
		byName[comp.Name] = comp
	}
	// one dnf in 15 races, teammate at 20%: base 93.3 plus relative credit
	assert.InDelta(t, 100, byName["finishing_reliability"].Score, 0.001)
	// identical qualifying positions: no variance at all
	assert.InDelta(t, 100, byName["qualifying_consistency"].Score, 0.001)
	// scores points in every finish, top-bucket expectation 0.8
	assert.InDelta(t, 87.5, byName["points_reliability"].Score, 0.001)
	assert.InDelta(t, 96.875, *score.Score, 0.001)
}

func TestCalculateBelowMinimum(t *testing.T) {
	h := steadyHistory(14, false)
	_, err := New().Calculate(context.Background(), h)
	assert.True(t, processing.IsInsufficientData(err))
}

func TestCalculateTeammateLookupFailure(t *testing.T) {
	h := steadyHistory(15, true)
	calc := New(WithDataSource(&fakeSource{err: errors.New("boom")}))
	score, err := calc.Calculate(context.Background(), h)
	assert.NoError(t, err)
	byName := make(map[string]model.ComponentResult)
	for _, comp := range score.Components {
		byName[comp.Name] = comp
	}
	// lookup failure zeroes the relative term, leaving the base score
	rate, _ := byName["finishing_reliability"].Stats.Get("teammate_dnf_rate")
	assert.InDelta(t, 0, rate, 0.001)
	assert.InDelta(t, (1-1.0/15)*100, byName["finishing_reliability"].Score, 0.001)
}

func TestCalculateNoDataSource(t *testing.T) {
	h := steadyHistory(15, false)
	score, err := New().Calculate(context.Background(), h)
	assert.NoError(t, err)
	assert.NotNil(t, score.Score)
}

func TestQualifyingSkippedBelowSampleMinimum(t *testing.T) {
	h := steadyHistory(15, false)
	// keep only four qualifying samples
	for i := 4; i < len(h.Races); i++ {
		h.Races[i].Qualifying = nil
	}
	score, err := New().Calculate(context.Background(), h)
	assert.NoError(t, err)
	assert.Len(t, score.Components, 2)
	for _, comp := range score.Components {
		assert.NotEqual(t, "qualifying_consistency", comp.Name)
	}
}
