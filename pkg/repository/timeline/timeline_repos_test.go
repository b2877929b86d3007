//nolint:errcheck // ok for this test code
package timeline

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/testsupport/basedata"
	"github.com/racingdecoded/driver-dna-go/testsupport/testdb"
)

func floatPtr(v float64) *float64 { return &v }

func TestUpsert(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.SeedSampleSeason(pool)
	ctx := context.Background()

	entry := &model.DriverDnaTimeline{
		DriverID:   basedata.SampleDriverID,
		Season:     2021,
		Races:      6,
		Aggression: floatPtr(70.0),
		RaceStart:  floatPtr(85.5),
	}
	assert.NilError(t, Upsert(ctx, pool, entry))

	got, err := LoadByDriverID(ctx, pool, basedata.SampleDriverID)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, 85.5, *got[0].RaceStart)
	assert.Assert(t, got[0].Racecraft == nil)

	// recompute for the same season replaces the record
	entry.Aggression = floatPtr(65.0)
	assert.NilError(t, Upsert(ctx, pool, entry))
	got, err = LoadByDriverID(ctx, pool, basedata.SampleDriverID)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, 65.0, *got[0].Aggression)

	cnt, err := Count(ctx, pool)
	assert.NilError(t, err)
	assert.Equal(t, 1, cnt)
}

func TestLoadByDriverIDOrder(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.SeedSampleSeason(pool)
	ctx := context.Background()

	for _, season := range []int{2022, 2021} {
		assert.NilError(t, Upsert(ctx, pool, &model.DriverDnaTimeline{
			DriverID: basedata.SampleDriverID,
			Season:   season,
			Races:    6,
		}))
	}
	got, err := LoadByDriverID(ctx, pool, basedata.SampleDriverID)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(got))
	assert.Equal(t, 2021, got[0].Season)
	assert.Equal(t, 2022, got[1].Season)
}
