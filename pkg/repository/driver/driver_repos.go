package driver

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/repository"
)

const selector = `select d.id, d.driver_ref, d.forename, d.surname`

// LoadByID returns the driver with the given database id.
func LoadByID(ctx context.Context, conn repository.Querier, id int) (*model.Driver, error) {
	row := conn.QueryRow(ctx, selector+` from drivers d where d.id=$1`, id)
	return scan(row)
}

// LoadByRef returns the driver with the given driver_ref.
func LoadByRef(ctx context.Context, conn repository.Querier, ref string) (*model.Driver, error) {
	row := conn.QueryRow(ctx, selector+` from drivers d where d.driver_ref=$1`, ref)
	return scan(row)
}

// LoadEligible returns drivers with at least minRaces race entries,
// ordered by entry count descending. limit <= 0 means no limit.
func LoadEligible(
	ctx context.Context,
	conn repository.Querier,
	minRaces int,
	limit int,
) ([]*model.Driver, error) {
	q := selector + `, count(r.id) cnt
	from drivers d join results r on r.driver_id=d.id
	group by d.id, d.driver_ref, d.forename, d.surname
	having count(r.id) >= $1
	order by cnt desc, d.id asc`
	args := []interface{}{minRaces}
	if limit > 0 {
		q += ` limit $2`
		args = append(args, limit)
	}
	rows, err := conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.Driver, 0)
	for rows.Next() {
		var d model.Driver
		if err := rows.Scan(&d.ID, &d.Ref, &d.Forename, &d.Surname, &d.Races); err != nil {
			return nil, err
		}
		ret = append(ret, &d)
	}
	return ret, nil
}

func scan(row pgx.Row) (*model.Driver, error) {
	var d model.Driver
	if err := row.Scan(&d.ID, &d.Ref, &d.Forename, &d.Surname); err != nil {
		return nil, err
	}
	return &d, nil
}
