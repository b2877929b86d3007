package breakdown

import (
	"context"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/repository"
)

// ReplaceForDriver removes the driver's breakdown records and inserts the
// given ones. Meant to run inside the same transaction as the profile upsert.
func ReplaceForDriver(
	ctx context.Context,
	conn repository.Querier,
	driverID int,
	items []*model.DriverDnaBreakdown,
) error {
	if _, err := conn.Exec(ctx,
		`delete from drivers_dna_breakdown where driver_id=$1`, driverID); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := conn.Exec(ctx, `
		insert into drivers_dna_breakdown (
		    driver_id, trait_name, raw_value, normalized_score,
		    contributing_stats, calculation_notes)
		values ($1,$2,$3,$4,$5,$6)`,
			driverID, item.Trait, item.RawValue, item.Score,
			item.Stats, item.Notes); err != nil {
			return err
		}
	}
	return nil
}

// LoadByDriverID returns the stored breakdown records ordered by trait name.
func LoadByDriverID(
	ctx context.Context,
	conn repository.Querier,
	driverID int,
) ([]*model.DriverDnaBreakdown, error) {
	rows, err := conn.Query(ctx, `
	select driver_id, trait_name, raw_value, normalized_score,
	       contributing_stats, calculation_notes
	from drivers_dna_breakdown
	where driver_id=$1
	order by trait_name asc`,
		driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.DriverDnaBreakdown, 0)
	for rows.Next() {
		var b model.DriverDnaBreakdown
		if err := rows.Scan(
			&b.DriverID, &b.Trait, &b.RawValue, &b.Score, &b.Stats, &b.Notes,
		); err != nil {
			return nil, err
		}
		ret = append(ret, &b)
	}
	return ret, nil
}

// Count returns the number of stored breakdown records.
func Count(ctx context.Context, conn repository.Querier) (int, error) {
	var cnt int
	err := conn.QueryRow(ctx, `select count(*) from drivers_dna_breakdown`).Scan(&cnt)
	return cnt, err
}
