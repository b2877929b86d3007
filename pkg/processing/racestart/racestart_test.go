package racestart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
)

// startHistory builds one race per (grid, lap1) pair.
func startHistory(starts [][2]int) *model.DriverRaceHistory {
	h := &model.DriverRaceHistory{
		DriverID: 1,
		Laps:     make(map[int][]model.LapRecord),
		PitStops: make(map[int][]model.PitStopRecord),
	}
	for i, s := range starts {
		raceID := i + 1
		grid := s[0]
		h.Races = append(h.Races, model.RaceEntry{
			RaceID: raceID, Season: 2021, Round: raceID,
			Grid: &grid, Status: model.StatusFinished,
		})
		h.Laps[raceID] = []model.LapRecord{{RaceID: raceID, Lap: 1, Position: s[1]}}
	}
	return h
}

func TestCalculateKnownScore(t *testing.T) {
	// gains two places in every race: avg change -2, all gains
	h := startHistory([][2]int{{10, 8}, {10, 8}, {10, 8}, {10, 8}, {10, 8}})
	score, err := New().Calculate(context.Background(), h)
	assert.NoError(t, err)
	assert.NotNil(t, score.Score)
	// base 50 + 2*10 = 70, frequency bonus (1-0)*20 = 20
	assert.InDelta(t, 90, *score.Score, 0.001)
	assert.Equal(t, model.TraitRaceStart, score.Trait)
}

func TestCalculateBelowMinimum(t *testing.T) {
	h := startHistory([][2]int{{10, 8}, {10, 8}, {10, 8}, {10, 8}})
	_, err := New().Calculate(context.Background(), h)
	assert.True(t, processing.IsInsufficientData(err))
}

func TestCalculateExcludesIncidents(t *testing.T) {
	// the +15 start is a lap-1 incident and must not drag the average
	h := startHistory([][2]int{{10, 8}, {10, 8}, {10, 8}, {10, 8}, {5, 20}})
	score, err := New().Calculate(context.Background(), h)
	assert.NoError(t, err)
	assert.InDelta(t, 90, *score.Score, 0.001)
	starts, _ := score.Components[0].Stats.Get("clean_starts")
	assert.InDelta(t, 4, starts, 0.001)
}

func TestCalculateTooFewCleanStarts(t *testing.T) {
	h := startHistory([][2]int{{5, 20}, {5, 20}, {5, 20}, {10, 8}, {10, 8}})
	_, err := New().Calculate(context.Background(), h)
	assert.True(t, processing.IsInsufficientData(err))
}

func TestCalculateMonotonicity(t *testing.T) {
	gainer := startHistory([][2]int{{10, 7}, {10, 7}, {10, 7}, {10, 7}, {10, 7}})
	loser := startHistory([][2]int{{10, 12}, {10, 12}, {10, 12}, {10, 12}, {10, 12}})
	calc := New()
	sGain, err := calc.Calculate(context.Background(), gainer)
	assert.NoError(t, err)
	sLose, err := calc.Calculate(context.Background(), loser)
	assert.NoError(t, err)
	assert.Greater(t, *sGain.Score, *sLose.Score)
}

func TestCalculateSkipsRacesWithoutLapData(t *testing.T) {
	h := startHistory([][2]int{{10, 8}, {10, 8}, {10, 8}, {10, 8}, {10, 8}})
	// extra race without lap 1 data does not count as a start
	grid := 10
	h.Races = append(h.Races, model.RaceEntry{
		RaceID: 99, Season: 2021, Round: 7, Grid: &grid,
		Status: model.StatusFinished,
	})
	score, err := New().Calculate(context.Background(), h)
	assert.NoError(t, err)
	withData, _ := score.Components[0].Stats.Get("starts_with_data")
	assert.InDelta(t, 5, withData, 0.001)
}
