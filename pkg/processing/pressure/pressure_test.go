package pressure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
)

type fakeSource struct {
	standings map[int]int // round -> standing
}

func (f *fakeSource) TeammateDnfRate(_ context.Context, _, _ int) (float64, error) {
	return 0, nil
}

func (f *fakeSource) EraAverageDnfRate(_ context.Context, _ int) (float64, error) {
	return 0, nil
}

func (f *fakeSource) StandingPosition(_ context.Context, _, _, afterRound int) (*int, error) {
	if pos, ok := f.standings[afterRound]; ok {
		return &pos, nil
	}
	return nil, nil
}

// contentionSeason builds a 20 round season: title contention (standing 2)
// with podiums in the first half, desperate (standing 6) finishing 6th in
// the second half.
func contentionSeason() (*model.DriverRaceHistory, *fakeSource) {
	h := &model.DriverRaceHistory{
		DriverID: 1,
		Laps:     make(map[int][]model.LapRecord),
		PitStops: make(map[int][]model.PitStopRecord),
	}
	source := &fakeSource{standings: make(map[int]int)}
	for round := 1; round <= 20; round++ {
		grid, finish := 8, 3
		standing := 2
		if round > 10 {
			finish = 6
			standing = 6
		}
		source.standings[round] = standing
		h.Races = append(h.Races, model.RaceEntry{
			RaceID: round, Season: 2021, Round: round,
			Grid: &grid, Finish: &finish,
			Status: model.StatusFinished,
		})
	}
	return h, source
}

func TestCalculateKnownScores(t *testing.T) {
	h, source := contentionSeason()
	calc := New(WithDataSource(source))
	score, err := calc.Calculate(context.Background(), h)
	assert.NoError(t, err)
	// no recovery drives in this season, so only three components
	assert.Len(t, score.Components, 3)

	byName := make(map[string]model.ComponentResult)
	for _, comp := range score.Components {
		byName[comp.Name] = comp
	}
	// finishes 3 places better in contention: effect -3
	assert.InDelta(t, 83, byName["championship_pressure"].Score, 0.01)
	// run-in average 6 vs season average 4.24
	assert.InDelta(t, 35.882, byName["season_ending"].Score, 0.01)
	// no podiums when desperate while podiuming half the season
	assert.InDelta(t, 20, byName["must_win"].Score, 0.01)

	// weights renormalized over 0.40 + 0.25 + 0.20
	want := (83*0.40 + 35.882353*0.25 + 20*0.20) / 0.85
	assert.InDelta(t, want, *score.Score, 0.01)
}

func TestCalculateWithoutStandings(t *testing.T) {
	h, _ := contentionSeason()
	// no data source: the standings-based components are skipped and the
	// season-ending component carries the whole trait
	score, err := New().Calculate(context.Background(), h)
	assert.NoError(t, err)
	assert.Len(t, score.Components, 1)
	assert.Equal(t, "season_ending", score.Components[0].Name)
	assert.InDelta(t, 35.882, *score.Score, 0.01)
}

func TestCalculateBelowMinimum(t *testing.T) {
	h, source := contentionSeason()
	h.Races = h.Races[:19]
	_, err := New(WithDataSource(source)).Calculate(context.Background(), h)
	assert.True(t, processing.IsInsufficientData(err))
}

func TestRecoveryComponent(t *testing.T) {
	h, source := contentionSeason()
	// three back-of-grid starts recovering into the points
	for round := 21; round <= 23; round++ {
		grid, quali, finish := 18, 18, 8
		source.standings[round] = 6
		h.Races = append(h.Races, model.RaceEntry{
			RaceID: round, Season: 2021, Round: round,
			Grid: &grid, Qualifying: &quali, Finish: &finish,
			Status: model.StatusFinished,
		})
	}
	score, err := New(WithDataSource(source)).Calculate(context.Background(), h)
	assert.NoError(t, err)
	byName := make(map[string]model.ComponentResult)
	for _, comp := range score.Components {
		byName[comp.Name] = comp
	}
	comp, ok := byName["recovery"]
	assert.True(t, ok)
	// all three recoveries reach the points, gaining ten places each
	assert.InDelta(t, 80, comp.Score, 0.01)
}
