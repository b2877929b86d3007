package profile

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/repository"
)

// Upsert writes the profile, replacing any previous record for the driver.
func Upsert(ctx context.Context, conn repository.Querier, p *model.DriverDnaProfile) error {
	_, err := conn.Exec(ctx, `
	insert into drivers_dna_profiles (
	    driver_id, driver_name,
	    aggression_score, consistency_score, racecraft_score,
	    pressure_performance_score, race_start_score,
	    races_analyzed, career_span, wins, podiums, avg_finish,
	    last_updated, batch_id)
	values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	on conflict (driver_id) do update set
	    driver_name=excluded.driver_name,
	    aggression_score=excluded.aggression_score,
	    consistency_score=excluded.consistency_score,
	    racecraft_score=excluded.racecraft_score,
	    pressure_performance_score=excluded.pressure_performance_score,
	    race_start_score=excluded.race_start_score,
	    races_analyzed=excluded.races_analyzed,
	    career_span=excluded.career_span,
	    wins=excluded.wins,
	    podiums=excluded.podiums,
	    avg_finish=excluded.avg_finish,
	    last_updated=excluded.last_updated,
	    batch_id=excluded.batch_id`,
		p.DriverID, p.DriverName,
		p.Aggression, p.Consistency, p.Racecraft, p.Pressure, p.RaceStart,
		p.RacesAnalyzed, p.CareerSpan, p.Wins, p.Podiums, p.AvgFinish,
		p.LastUpdated, p.BatchID)
	return err
}

const selector = `select driver_id, driver_name,
	aggression_score, consistency_score, racecraft_score,
	pressure_performance_score, race_start_score,
	races_analyzed, career_span, wins, podiums, avg_finish,
	last_updated, batch_id
	from drivers_dna_profiles`

// LoadByDriverID returns the stored profile for a driver.
func LoadByDriverID(
	ctx context.Context,
	conn repository.Querier,
	driverID int,
) (*model.DriverDnaProfile, error) {
	row := conn.QueryRow(ctx, selector+` where driver_id=$1`, driverID)
	return scan(row)
}

// LoadAll returns all stored profiles ordered by driver id.
func LoadAll(ctx context.Context, conn repository.Querier) ([]*model.DriverDnaProfile, error) {
	rows, err := conn.Query(ctx, selector+` order by driver_id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.DriverDnaProfile, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, nil
}

// Count returns the number of stored profiles.
func Count(ctx context.Context, conn repository.Querier) (int, error) {
	var cnt int
	err := conn.QueryRow(ctx, `select count(*) from drivers_dna_profiles`).Scan(&cnt)
	return cnt, err
}

// LastUpdated returns the most recent update time, or nil when no
// profiles are stored.
func LastUpdated(ctx context.Context, conn repository.Querier) (*time.Time, error) {
	var ts *time.Time
	err := conn.QueryRow(ctx, `select max(last_updated) from drivers_dna_profiles`).Scan(&ts)
	return ts, err
}

// DeleteByDriverID removes the profile. Returns the number of deleted rows.
func DeleteByDriverID(ctx context.Context, conn repository.Querier, driverID int) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		`delete from drivers_dna_profiles where driver_id=$1`, driverID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func scan(row pgx.Row) (*model.DriverDnaProfile, error) {
	var p model.DriverDnaProfile
	if err := row.Scan(
		&p.DriverID, &p.DriverName,
		&p.Aggression, &p.Consistency, &p.Racecraft, &p.Pressure, &p.RaceStart,
		&p.RacesAnalyzed, &p.CareerSpan, &p.Wins, &p.Podiums, &p.AvgFinish,
		&p.LastUpdated, &p.BatchID,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
