package aggression

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
)

// chargerHistory builds n identical races: qualifies 10th, first lap to 8th,
// runs 8th until it gains a place late, finishes 7th.
func chargerHistory(n int) *model.DriverRaceHistory {
	h := &model.DriverRaceHistory{
		DriverID: 1,
		Laps:     make(map[int][]model.LapRecord),
		PitStops: make(map[int][]model.PitStopRecord),
	}
	for i := 0; i < n; i++ {
		raceID := i + 1
		quali, grid, finish := 10, 10, 7
		h.Races = append(h.Races, model.RaceEntry{
			RaceID: raceID, Season: 2021, Round: raceID,
			Qualifying: &quali, Grid: &grid, Finish: &finish,
			Status: model.StatusFinished, Laps: 50,
		})
		laps := make([]model.LapRecord, 0, 50)
		for lap := 1; lap <= 50; lap++ {
			pos := 8
			if lap > 40 {
				pos = 7
			}
			laps = append(laps, model.LapRecord{RaceID: raceID, Lap: lap, Position: pos})
		}
		h.Laps[raceID] = laps
	}
	return h
}

func TestCalculateComponentScores(t *testing.T) {
	h := chargerHistory(15)
	score, err := New().Calculate(context.Background(), h)
	assert.NoError(t, err)
	assert.NotNil(t, score.Score)
	assert.Len(t, score.Components, 3)

	byName := make(map[string]model.ComponentResult)
	for _, comp := range score.Components {
		byName[comp.Name] = comp
	}
	// +3 every race: gain score 80, frequency 100, peak 15
	assert.InDelta(t, 80*0.5+100*0.3+15*0.2, byName["overtaking_rate"].Score, 0.001)
	// +2 on lap 1 every race: gain score 80, aggressive frequency 100
	assert.InDelta(t, 80*0.7+100*0.3, byName["first_lap"].Score, 0.001)
	// one place gained after 80% distance
	assert.InDelta(t, 62*0.6+100*0.4, byName["late_race_moves"].Score, 0.001)

	want := 73.0*0.40 + 86.0*0.35 + 77.2*0.25
	assert.InDelta(t, want, *score.Score, 0.001)
}

func TestCalculateBelowMinimum(t *testing.T) {
	h := chargerHistory(14)
	_, err := New().Calculate(context.Background(), h)
	assert.True(t, processing.IsInsufficientData(err))

	var insufficient *processing.InsufficientDataError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 14, insufficient.Races)
	assert.Equal(t, 15, insufficient.Required)
}

func TestCalculateMinRacesOverride(t *testing.T) {
	h := chargerHistory(10)
	score, err := New(WithMinRaces(10)).Calculate(context.Background(), h)
	assert.NoError(t, err)
	assert.NotNil(t, score.Score)
}

func TestCalculateDnfExcludedFromGainArithmetic(t *testing.T) {
	h := chargerHistory(15)
	// dnf: no finish position, still counts in the frequency denominator
	quali, grid := 5, 5
	h.Races = append(h.Races, model.RaceEntry{
		RaceID: 99, Season: 2021, Round: 16,
		Qualifying: &quali, Grid: &grid,
		Status: model.StatusDnf, Laps: 10,
	})
	score, err := New().Calculate(context.Background(), h)
	assert.NoError(t, err)
	byName := make(map[string]model.ComponentResult)
	for _, comp := range score.Components {
		byName[comp.Name] = comp
	}
	racesWithData, _ := byName["overtaking_rate"].Stats.Get("races_with_data")
	assert.InDelta(t, 15, racesWithData, 0.001)
	freq, _ := byName["overtaking_rate"].Stats.Get("gain_frequency")
	assert.InDelta(t, 15.0/16.0, freq, 0.001)
}
