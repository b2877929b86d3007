package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
)

const (
	TraitAggression  = "aggression"
	TraitConsistency = "consistency"
	TraitRacecraft   = "racecraft"
	TraitPressure    = "pressure_performance"
	TraitRaceStart   = "race_start"
)

var AllTraits = []string{
	TraitAggression,
	TraitConsistency,
	TraitRacecraft,
	TraitPressure,
	TraitRaceStart,
}

// ComponentStats is an insertion-ordered bag of named numbers kept for
// explainability. The version tag tells consumers which keys to expect.
type ComponentStats struct {
	version string
	keys    []string
	values  map[string]float64
}

func NewComponentStats(version string) *ComponentStats {
	return &ComponentStats{version: version, values: make(map[string]float64)}
}

func (s *ComponentStats) Version() string { return s.version }

func (s *ComponentStats) Set(key string, value float64) *ComponentStats {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	return s
}

func (s *ComponentStats) Get(key string) (float64, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *ComponentStats) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// MarshalJSON emits the version tag first and then the stats in insertion
// order, so serialization is deterministic.
func (s *ComponentStats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, `"_version":%q`, s.version)
	for _, k := range s.keys {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.values[k])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *ComponentStats) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}
	s.values = make(map[string]float64)
	s.keys = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var val float64
		if key == "_version" {
			var v string
			if err := dec.Decode(&v); err != nil {
				return err
			}
			s.version = v
			continue
		}
		if err := dec.Decode(&val); err != nil {
			return err
		}
		s.Set(key, val)
	}
	return nil
}

// ComponentResult is one weighted sub-component of a trait.
type ComponentResult struct {
	Name     string          `json:"name"`
	Weight   float64         `json:"weight"`
	RawValue float64         `json:"rawValue"`
	Score    float64         `json:"score"` // normalized, clamped to [0,100]
	Stats    *ComponentStats `json:"stats"`
}

// TraitScore holds a trait's final score. Score is nil when the driver was
// not eligible for this trait; nil must never be conflated with 0.
type TraitScore struct {
	Trait         string            `json:"trait"`
	Score         *float64          `json:"score"`
	RawValue      float64           `json:"rawValue"`
	Components    []ComponentResult `json:"components"`
	Notes         string            `json:"notes"`
	RacesAnalyzed int               `json:"racesAnalyzed"`
}

// DriverDnaProfile is overwritten wholesale on each recompute.
type DriverDnaProfile struct {
	DriverID      int       `json:"driverId"`
	DriverName    string    `json:"driverName"`
	Aggression    *float64  `json:"aggressionScore"`
	Consistency   *float64  `json:"consistencyScore"`
	Racecraft     *float64  `json:"racecraftScore"`
	Pressure      *float64  `json:"pressurePerformanceScore"`
	RaceStart     *float64  `json:"raceStartScore"`
	RacesAnalyzed int       `json:"racesAnalyzed"`
	CareerSpan    string    `json:"careerSpan"`
	Wins          int       `json:"wins"`
	Podiums       int       `json:"podiums"`
	AvgFinish     *float64  `json:"avgFinishPosition"`
	LastUpdated   time.Time `json:"lastUpdated"`
	BatchID       uuid.UUID `json:"batchId"`
}

func (p *DriverDnaProfile) TraitScore(trait string) *float64 {
	switch trait {
	case TraitAggression:
		return p.Aggression
	case TraitConsistency:
		return p.Consistency
	case TraitRacecraft:
		return p.Racecraft
	case TraitPressure:
		return p.Pressure
	case TraitRaceStart:
		return p.RaceStart
	}
	return nil
}

// DriverDnaBreakdown is one persisted record per (driver, trait). Stats holds
// the component stats serialized as JSON.
type DriverDnaBreakdown struct {
	DriverID int     `json:"driverId"`
	Trait    string  `json:"traitName"`
	RawValue float64 `json:"rawValue"`
	Score    float64 `json:"normalizedScore"`
	Stats    string  `json:"contributingStats"`
	Notes    string  `json:"calculationNotes"`
}

// DriverDnaTimeline is one record per (driver, season), computed from that
// season's races only.
type DriverDnaTimeline struct {
	DriverID    int      `json:"driverId"`
	Season      int      `json:"season"`
	Races       int      `json:"races"`
	Aggression  *float64 `json:"aggressionScore"`
	Consistency *float64 `json:"consistencyScore"`
	Racecraft   *float64 `json:"racecraftScore"`
	Pressure    *float64 `json:"pressurePerformanceScore"`
	RaceStart   *float64 `json:"raceStartScore"`
}
