package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentStatsMarshalOrder(t *testing.T) {
	s := NewComponentStats("test@1").
		Set("zulu", 1).
		Set("alpha", 2).
		Set("mike", 3)
	data, err := json.Marshal(s)
	assert.NoError(t, err)
	// version first, then insertion order, not alphabetical
	assert.Equal(t, `{"_version":"test@1","zulu":1,"alpha":2,"mike":3}`, string(data))
}

func TestComponentStatsSetOverwrites(t *testing.T) {
	s := NewComponentStats("test@1").
		Set("a", 1).
		Set("b", 2).
		Set("a", 9)
	data, err := json.Marshal(s)
	assert.NoError(t, err)
	assert.Equal(t, `{"_version":"test@1","a":9,"b":2}`, string(data))
}

func TestComponentStatsRoundTrip(t *testing.T) {
	s := NewComponentStats("test@2").
		Set("dnf_rate", 0.125).
		Set("total_races", 16)
	data, err := json.Marshal(s)
	assert.NoError(t, err)

	var got ComponentStats
	assert.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "test@2", got.Version())
	assert.Equal(t, s.Keys(), got.Keys())
	v, ok := got.Get("dnf_rate")
	assert.True(t, ok)
	assert.InDelta(t, 0.125, v, 0.0001)
}

func TestProfileTraitScore(t *testing.T) {
	val := 75.5
	p := &DriverDnaProfile{Racecraft: &val}
	assert.Equal(t, &val, p.TraitScore(TraitRacecraft))
	assert.Nil(t, p.TraitScore(TraitAggression))
	assert.Nil(t, p.TraitScore("unknown"))
}
