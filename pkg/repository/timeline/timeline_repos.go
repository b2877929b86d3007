package timeline

import (
	"context"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/repository"
)

// Upsert writes one season record of the driver's timeline.
func Upsert(ctx context.Context, conn repository.Querier, t *model.DriverDnaTimeline) error {
	_, err := conn.Exec(ctx, `
	insert into drivers_dna_timeline (
	    driver_id, season, races,
	    aggression_score, consistency_score, racecraft_score,
	    pressure_performance_score, race_start_score)
	values ($1,$2,$3,$4,$5,$6,$7,$8)
	on conflict (driver_id, season) do update set
	    races=excluded.races,
	    aggression_score=excluded.aggression_score,
	    consistency_score=excluded.consistency_score,
	    racecraft_score=excluded.racecraft_score,
	    pressure_performance_score=excluded.pressure_performance_score,
	    race_start_score=excluded.race_start_score`,
		t.DriverID, t.Season, t.Races,
		t.Aggression, t.Consistency, t.Racecraft, t.Pressure, t.RaceStart)
	return err
}

// LoadByDriverID returns the driver's timeline ordered by season.
func LoadByDriverID(
	ctx context.Context,
	conn repository.Querier,
	driverID int,
) ([]*model.DriverDnaTimeline, error) {
	rows, err := conn.Query(ctx, `
	select driver_id, season, races,
	       aggression_score, consistency_score, racecraft_score,
	       pressure_performance_score, race_start_score
	from drivers_dna_timeline
	where driver_id=$1
	order by season asc`,
		driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.DriverDnaTimeline, 0)
	for rows.Next() {
		var t model.DriverDnaTimeline
		if err := rows.Scan(
			&t.DriverID, &t.Season, &t.Races,
			&t.Aggression, &t.Consistency, &t.Racecraft, &t.Pressure, &t.RaceStart,
		); err != nil {
			return nil, err
		}
		ret = append(ret, &t)
	}
	return ret, nil
}

// Count returns the number of stored timeline records.
func Count(ctx context.Context, conn repository.Querier) (int, error) {
	var cnt int
	err := conn.QueryRow(ctx, `select count(*) from drivers_dna_timeline`).Scan(&cnt)
	return cnt, err
}
