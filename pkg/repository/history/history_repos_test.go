//nolint:errcheck // ok for this test code
package history

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/testsupport/basedata"
	"github.com/racingdecoded/driver-dna-go/testsupport/testdb"
)

func TestLoadByDriverID(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.SeedSampleSeason(pool)

	h, err := LoadByDriverID(context.Background(), pool, basedata.SampleDriverID)
	assert.NilError(t, err)
	assert.Equal(t, 6, len(h.Races))
	// ordered by season, round
	for i := range h.Races {
		assert.Equal(t, i+1, h.Races[i].Round)
	}
	first := h.Races[0]
	assert.Equal(t, 2021, first.Season)
	assert.Assert(t, first.Grid != nil)
	assert.Equal(t, 8, *first.Grid)
	assert.Assert(t, first.Qualifying != nil)
	assert.Equal(t, model.StatusFinished, first.Status)

	// round 4 was a retirement: no finish position
	dnf := h.Races[3]
	assert.Equal(t, model.StatusDnf, dnf.Status)
	assert.Assert(t, dnf.Finish == nil)

	assert.Equal(t, 50, len(h.Laps[1]))
	assert.Equal(t, 1, h.Laps[1][0].Lap)
}

func TestTeammateDnfRate(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.SeedSampleSeason(pool)
	ctx := context.Background()

	// teammate retired twice in six shared races
	rate, err := TeammateDnfRate(ctx, pool, basedata.SampleDriverID, 2021)
	assert.NilError(t, err)
	assert.Assert(t, rate > 0.33 && rate < 0.34)

	// no teammates on record for an empty season
	rate, err = TeammateDnfRate(ctx, pool, basedata.SampleDriverID, 1999)
	assert.NilError(t, err)
	assert.Equal(t, 0.0, rate)
}

func TestEraAverageDnfRate(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.SeedSampleSeason(pool)

	// three retirements across twelve entries
	rate, err := EraAverageDnfRate(context.Background(), pool, 2021)
	assert.NilError(t, err)
	assert.Equal(t, 0.25, rate)
}

func TestStandingPosition(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.SeedSampleSeason(pool)
	ctx := context.Background()

	pos, err := StandingPosition(ctx, pool, basedata.SampleDriverID, 2021, 3)
	assert.NilError(t, err)
	assert.Assert(t, pos != nil)
	assert.Equal(t, 4, *pos)

	// no standings recorded for the teammate
	pos, err = StandingPosition(ctx, pool, basedata.TeammateDriverID, 2021, 3)
	assert.NilError(t, err)
	assert.Assert(t, pos == nil)
}
