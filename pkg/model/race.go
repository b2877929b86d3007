package model

import "slices"

type Driver struct {
	ID       int    `json:"id"`
	Ref      string `json:"driverRef"`
	Forename string `json:"forename"`
	Surname  string `json:"surname"`
	Races    int    `json:"races"`
}

func (d *Driver) Name() string {
	if d.Forename == "" {
		return d.Surname
	}
	return d.Forename + " " + d.Surname
}

type RaceStatus string

const (
	StatusFinished     RaceStatus = "finished"
	StatusDnf          RaceStatus = "dnf"
	StatusDisqualified RaceStatus = "dsq"
)

// RaceEntry is one driver-race instance. Grid, Finish and Qualifying are nil
// when the underlying record has no value (pit-lane start, DNF, no quali time).
type RaceEntry struct {
	RaceID         int        `json:"raceId"`
	Season         int        `json:"season"`
	Round          int        `json:"round"`
	CircuitRef     string     `json:"circuitRef"`
	ConstructorRef string     `json:"constructorRef"`
	Grid           *int       `json:"grid"`
	Finish         *int       `json:"finish"`
	Qualifying     *int       `json:"qualifying"`
	Points         float64    `json:"points"`
	Laps           int        `json:"laps"`
	Status         RaceStatus `json:"status"`
}

func (r *RaceEntry) Finished() bool { return r.Status == StatusFinished && r.Finish != nil }
func (r *RaceEntry) IsDnf() bool    { return r.Status == StatusDnf }

// LapRecord is the position after a single lap. TimeSec is nil when no lap
// time was recorded.
type LapRecord struct {
	RaceID   int      `json:"raceId"`
	Lap      int      `json:"lap"`
	Position int      `json:"position"`
	TimeSec  *float64 `json:"timeSec"`
}

type PitStopRecord struct {
	RaceID      int     `json:"raceId"`
	Stop        int     `json:"stop"`
	Lap         int     `json:"lap"`
	DurationSec float64 `json:"durationSec"`
}

// DriverRaceHistory is the unit of input to every trait calculator.
// Races are ordered by season, then round. Laps per race are ordered by lap.
type DriverRaceHistory struct {
	DriverID int
	Races    []RaceEntry
	Laps     map[int][]LapRecord
	PitStops map[int][]PitStopRecord
}

// Seasons returns the distinct seasons in ascending order.
func (h *DriverRaceHistory) Seasons() []int {
	seasons := make([]int, 0)
	for i := range h.Races {
		if !slices.Contains(seasons, h.Races[i].Season) {
			seasons = append(seasons, h.Races[i].Season)
		}
	}
	slices.Sort(seasons)
	return seasons
}

// SeasonView returns a history restricted to a single season. The returned
// value shares the underlying lap and pit stop slices.
func (h *DriverRaceHistory) SeasonView(season int) *DriverRaceHistory {
	view := &DriverRaceHistory{
		DriverID: h.DriverID,
		Races:    make([]RaceEntry, 0),
		Laps:     make(map[int][]LapRecord),
		PitStops: make(map[int][]PitStopRecord),
	}
	for i := range h.Races {
		if h.Races[i].Season != season {
			continue
		}
		view.Races = append(view.Races, h.Races[i])
		if laps, ok := h.Laps[h.Races[i].RaceID]; ok {
			view.Laps[h.Races[i].RaceID] = laps
		}
		if stops, ok := h.PitStops[h.Races[i].RaceID]; ok {
			view.PitStops[h.Races[i].RaceID] = stops
		}
	}
	return view
}

// Lap1Position returns the position after the first lap, nil if unknown.
func (h *DriverRaceHistory) Lap1Position(raceID int) *int {
	for _, lr := range h.Laps[raceID] {
		if lr.Lap == 1 {
			pos := lr.Position
			return &pos
		}
	}
	return nil
}

// PositionAtFraction returns the position after the lap closest to the given
// fraction of the race distance, nil when no lap data is available.
func (h *DriverRaceHistory) PositionAtFraction(raceID int, fraction float64) *int {
	laps := h.Laps[raceID]
	if len(laps) == 0 {
		return nil
	}
	targetLap := int(float64(laps[len(laps)-1].Lap) * fraction)
	if targetLap < 1 {
		targetLap = 1
	}
	var best *LapRecord
	for i := range laps {
		if laps[i].Lap <= targetLap {
			best = &laps[i]
		}
	}
	if best == nil {
		return nil
	}
	pos := best.Position
	return &pos
}

// MalformedRecord describes a record excluded by sanity checks.
type MalformedRecord struct {
	RaceID int
	Field  string
	Reason string
}

// Sanitize removes records failing basic sanity checks (non-positive
// positions, lap numbers out of range) and reports what was dropped.
// The offending record is excluded, never the whole driver.
func (h *DriverRaceHistory) Sanitize() []MalformedRecord {
	dropped := make([]MalformedRecord, 0)
	races := h.Races[:0]
	for i := range h.Races {
		r := h.Races[i]
		switch {
		case r.Grid != nil && *r.Grid < 0:
			dropped = append(dropped, MalformedRecord{r.RaceID, "grid", "negative position"})
		case r.Finish != nil && *r.Finish < 1:
			dropped = append(dropped, MalformedRecord{r.RaceID, "finish", "non-positive position"})
		case r.Qualifying != nil && *r.Qualifying < 1:
			dropped = append(dropped, MalformedRecord{r.RaceID, "qualifying", "non-positive position"})
		default:
			races = append(races, r)
			continue
		}
	}
	h.Races = races
	for raceID, laps := range h.Laps {
		kept := laps[:0]
		for i := range laps {
			if laps[i].Lap < 1 || laps[i].Position < 1 {
				dropped = append(dropped, MalformedRecord{raceID, "lap", "invalid lap record"})
				continue
			}
			kept = append(kept, laps[i])
		}
		h.Laps[raceID] = kept
	}
	return dropped
}
