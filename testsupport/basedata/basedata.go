//nolint:errcheck // testsetup
package basedata

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SampleDriverID is the id of the driver seeded by SeedSampleSeason.
const SampleDriverID = 1

// TeammateDriverID is the id of the seeded teammate.
const TeammateDriverID = 2

// SeedSampleSeason inserts two teammates and a six race season (2021).
// The sample driver qualifies mid-pack, gains places in the races and
// retires once; the teammate retires twice.
func SeedSampleSeason(pool *pgxpool.Pool) {
	ctx := context.Background()
	mustExec(ctx, pool, `insert into drivers (id, driver_ref, forename, surname) values
		(1, 'sampledriver', 'Sample', 'Driver'),
		(2, 'teammate', 'Team', 'Mate')`)

	for round := 1; round <= 6; round++ {
		mustExec(ctx, pool, fmt.Sprintf(
			`insert into races (id, season, round, circuit_ref, name)
			 values (%d, 2021, %d, 'circuit%d', 'Race %d')`,
			round, round, round, round))
	}

	// driver 1: starts 8th, finishes 5th, one dnf in round 4
	for round := 1; round <= 6; round++ {
		status, position := "'finished'", "5"
		if round == 4 {
			status, position = "'dnf'", "null"
		}
		mustExec(ctx, pool, fmt.Sprintf(
			`insert into results (race_id, driver_id, constructor_ref,
			    grid, position, points, laps, status)
			 values (%d, 1, 'teamx', 8, %s, 10, 50, %s)`,
			round, position, status))
		mustExec(ctx, pool, fmt.Sprintf(
			`insert into qualifying (race_id, driver_id, position)
			 values (%d, 1, 8)`, round))
		// lap 1 gains two places, stays there until the end
		for lap := 1; lap <= 50; lap++ {
			mustExec(ctx, pool, fmt.Sprintf(
				`insert into lap_times (race_id, driver_id, lap, position, time_sec)
				 values (%d, 1, %d, 6, 92.5)`, round, lap))
		}
		mustExec(ctx, pool, fmt.Sprintf(
			`insert into driver_standings (race_id, driver_id, position, points)
			 values (%d, 1, 4, %d)`, round, round*10))
	}

	// driver 2 (teammate): two dnfs
	for round := 1; round <= 6; round++ {
		status, position := "'finished'", "7"
		if round == 2 || round == 5 {
			status, position = "'dnf'", "null"
		}
		mustExec(ctx, pool, fmt.Sprintf(
			`insert into results (race_id, driver_id, constructor_ref,
			    grid, position, points, laps, status)
			 values (%d, 2, 'teamx', 10, %s, 6, 50, %s)`,
			round, position, status))
	}
}

func mustExec(ctx context.Context, pool *pgxpool.Pool, sql string) {
	if _, err := pool.Exec(ctx, sql); err != nil {
		log.Fatalf("seed: %v\n", err)
	}
}
