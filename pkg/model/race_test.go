package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func sampleHistory() *DriverRaceHistory {
	return &DriverRaceHistory{
		DriverID: 1,
		Races: []RaceEntry{
			{RaceID: 1, Season: 2020, Round: 1, Grid: intPtr(5), Finish: intPtr(3), Status: StatusFinished},
			{RaceID: 2, Season: 2020, Round: 2, Grid: intPtr(4), Status: StatusDnf},
			{RaceID: 3, Season: 2021, Round: 1, Grid: intPtr(2), Finish: intPtr(1), Status: StatusFinished},
		},
		Laps: map[int][]LapRecord{
			1: {
				{RaceID: 1, Lap: 1, Position: 4},
				{RaceID: 1, Lap: 2, Position: 4},
				{RaceID: 1, Lap: 3, Position: 3},
				{RaceID: 1, Lap: 4, Position: 3},
				{RaceID: 1, Lap: 5, Position: 3},
			},
			3: {
				{RaceID: 3, Lap: 1, Position: 1},
			},
		},
		PitStops: map[int][]PitStopRecord{
			1: {{RaceID: 1, Stop: 1, Lap: 3, DurationSec: 22.5}},
		},
	}
}

func TestSeasons(t *testing.T) {
	h := sampleHistory()
	assert.Equal(t, []int{2020, 2021}, h.Seasons())
}

func TestSeasonView(t *testing.T) {
	h := sampleHistory()
	view := h.SeasonView(2020)
	assert.Len(t, view.Races, 2)
	assert.Len(t, view.Laps, 1)
	assert.Len(t, view.PitStops, 1)
	if diff := cmp.Diff(h.Laps[1], view.Laps[1]); diff != "" {
		t.Errorf("laps mismatch (-want +got):\n%s", diff)
	}
	// the view must not see other seasons
	assert.Empty(t, view.SeasonView(2021).Races)
}

func TestLap1Position(t *testing.T) {
	h := sampleHistory()
	pos := h.Lap1Position(1)
	assert.NotNil(t, pos)
	assert.Equal(t, 4, *pos)
	assert.Nil(t, h.Lap1Position(2))
}

func TestPositionAtFraction(t *testing.T) {
	h := sampleHistory()
	// 80% of 5 laps is lap 4
	pos := h.PositionAtFraction(1, 0.8)
	assert.NotNil(t, pos)
	assert.Equal(t, 3, *pos)
	assert.Nil(t, h.PositionAtFraction(2, 0.8))
}

func TestSanitizeDropsMalformedRecords(t *testing.T) {
	h := sampleHistory()
	h.Races = append(h.Races, RaceEntry{
		RaceID: 4, Season: 2021, Round: 2,
		Grid: intPtr(-1), Status: StatusFinished,
	})
	h.Laps[3] = append(h.Laps[3], LapRecord{RaceID: 3, Lap: 0, Position: 1})

	dropped := h.Sanitize()
	assert.Len(t, dropped, 2)
	assert.Len(t, h.Races, 3)
	assert.Len(t, h.Laps[3], 1)
}

func TestRaceEntryStatus(t *testing.T) {
	finished := RaceEntry{Finish: intPtr(3), Status: StatusFinished}
	assert.True(t, finished.Finished())
	assert.False(t, finished.IsDnf())

	dnf := RaceEntry{Status: StatusDnf}
	assert.False(t, dnf.Finished())
	assert.True(t, dnf.IsDnf())

	// classified but marked dsq must not count as finished
	dsq := RaceEntry{Finish: intPtr(5), Status: StatusDisqualified}
	assert.False(t, dsq.Finished())
}

func TestDriverName(t *testing.T) {
	d := &Driver{Forename: "Max", Surname: "Verstappen"}
	assert.Equal(t, "Max Verstappen", d.Name())
	mono := &Driver{Surname: "Fangio"}
	assert.Equal(t, "Fangio", mono.Name())
}
