//nolint:errcheck // ok for this test code
package driver

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/racingdecoded/driver-dna-go/testsupport/basedata"
	"github.com/racingdecoded/driver-dna-go/testsupport/testdb"
)

func TestLoadByRef(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.SeedSampleSeason(pool)
	ctx := context.Background()

	d, err := LoadByRef(ctx, pool, "sampledriver")
	assert.NilError(t, err)
	assert.Equal(t, basedata.SampleDriverID, d.ID)
	assert.Equal(t, "Sample Driver", d.Name())

	_, err = LoadByRef(ctx, pool, "unknown")
	assert.Assert(t, err != nil)
}

func TestLoadByID(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.SeedSampleSeason(pool)

	d, err := LoadByID(context.Background(), pool, basedata.TeammateDriverID)
	assert.NilError(t, err)
	assert.Equal(t, "teammate", d.Ref)
}

func TestLoadEligible(t *testing.T) {
	pool := testdb.InitTestDb()
	basedata.SeedSampleSeason(pool)
	ctx := context.Background()

	// both seeded drivers have six race entries
	drivers, err := LoadEligible(ctx, pool, 6, 0)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(drivers))
	assert.Equal(t, 6, drivers[0].Races)

	drivers, err = LoadEligible(ctx, pool, 7, 0)
	assert.NilError(t, err)
	assert.Equal(t, 0, len(drivers))

	drivers, err = LoadEligible(ctx, pool, 1, 1)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(drivers))
}
