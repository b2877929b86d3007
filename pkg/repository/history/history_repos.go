package history

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/repository"
)

// LoadByDriverID collects the complete race history for a driver:
// race entries (with qualifying positions), lap-by-lap positions and
// pit stops. Entries are ordered by season, then round.
func LoadByDriverID(
	ctx context.Context,
	conn repository.Querier,
	driverID int,
) (*model.DriverRaceHistory, error) {
	ret := &model.DriverRaceHistory{
		DriverID: driverID,
		Races:    make([]model.RaceEntry, 0),
		Laps:     make(map[int][]model.LapRecord),
		PitStops: make(map[int][]model.PitStopRecord),
	}
	if err := loadRaces(ctx, conn, ret); err != nil {
		return nil, err
	}
	if err := loadLaps(ctx, conn, ret); err != nil {
		return nil, err
	}
	if err := loadPitStops(ctx, conn, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func loadRaces(ctx context.Context, conn repository.Querier, h *model.DriverRaceHistory) error {
	rows, err := conn.Query(ctx, `
	select r.race_id, ra.season, ra.round, ra.circuit_ref, r.constructor_ref,
	       r.grid, r.position, q.position, r.points, r.laps, r.status
	from results r
	join races ra on ra.id=r.race_id
	left join qualifying q on q.race_id=r.race_id and q.driver_id=r.driver_id
	where r.driver_id=$1
	order by ra.season asc, ra.round asc`,
		h.DriverID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e model.RaceEntry
		if err := rows.Scan(
			&e.RaceID, &e.Season, &e.Round, &e.CircuitRef, &e.ConstructorRef,
			&e.Grid, &e.Finish, &e.Qualifying, &e.Points, &e.Laps, &e.Status,
		); err != nil {
			return err
		}
		h.Races = append(h.Races, e)
	}
	return nil
}

func loadLaps(ctx context.Context, conn repository.Querier, h *model.DriverRaceHistory) error {
	rows, err := conn.Query(ctx, `
	select race_id, lap, position, time_sec
	from lap_times where driver_id=$1
	order by race_id asc, lap asc`,
		h.DriverID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var l model.LapRecord
		if err := rows.Scan(&l.RaceID, &l.Lap, &l.Position, &l.TimeSec); err != nil {
			return err
		}
		h.Laps[l.RaceID] = append(h.Laps[l.RaceID], l)
	}
	return nil
}

func loadPitStops(ctx context.Context, conn repository.Querier, h *model.DriverRaceHistory) error {
	rows, err := conn.Query(ctx, `
	select race_id, stop, lap, coalesce(duration_sec, 0)
	from pit_stops where driver_id=$1
	order by race_id asc, stop asc`,
		h.DriverID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.PitStopRecord
		if err := rows.Scan(&p.RaceID, &p.Stop, &p.Lap, &p.DurationSec); err != nil {
			return err
		}
		h.PitStops[p.RaceID] = append(h.PitStops[p.RaceID], p)
	}
	return nil
}

// TeammateDnfRate is the DNF rate of the driver's teammates in a season:
// entries by other drivers of the driver's constructors in races the driver
// entered. Returns 0 when there are no such entries.
func TeammateDnfRate(
	ctx context.Context,
	conn repository.Querier,
	driverID int,
	season int,
) (float64, error) {
	row := conn.QueryRow(ctx, `
	select coalesce(avg(case when t.status='dnf' then 1.0 else 0.0 end), 0)
	from results t
	join races ra on ra.id=t.race_id
	where ra.season=$2
	  and t.driver_id <> $1
	  and t.race_id in (select race_id from results where driver_id=$1)
	  and t.constructor_ref in (
	      select distinct r.constructor_ref from results r
	      join races ra2 on ra2.id=r.race_id
	      where r.driver_id=$1 and ra2.season=$2)`,
		driverID, season)
	var rate float64
	if err := row.Scan(&rate); err != nil {
		return 0, err
	}
	return rate, nil
}

// EraAverageDnfRate is the DNF rate over all race entries of a season.
func EraAverageDnfRate(
	ctx context.Context,
	conn repository.Querier,
	season int,
) (float64, error) {
	row := conn.QueryRow(ctx, `
	select coalesce(avg(case when r.status='dnf' then 1.0 else 0.0 end), 0)
	from results r join races ra on ra.id=r.race_id
	where ra.season=$1`,
		season)
	var rate float64
	if err := row.Scan(&rate); err != nil {
		return 0, err
	}
	return rate, nil
}

// StandingPosition returns the driver's championship position after the
// given round of a season, or nil when no standing is recorded.
func StandingPosition(
	ctx context.Context,
	conn repository.Querier,
	driverID int,
	season int,
	afterRound int,
) (*int, error) {
	row := conn.QueryRow(ctx, `
	select ds.position
	from driver_standings ds join races ra on ra.id=ds.race_id
	where ds.driver_id=$1 and ra.season=$2 and ra.round=$3`,
		driverID, season, afterRound)
	var pos *int
	if err := row.Scan(&pos); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return pos, nil
}
