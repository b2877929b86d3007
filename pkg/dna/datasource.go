package dna

import (
	"context"
	"sync"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
	"github.com/racingdecoded/driver-dna-go/pkg/repository"
	"github.com/racingdecoded/driver-dna-go/pkg/repository/driver"
	"github.com/racingdecoded/driver-dna-go/pkg/repository/history"
)

// Loader reads the source race data.
type Loader interface {
	EligibleDrivers(ctx context.Context, minRaces, limit int) ([]*model.Driver, error)
	DriverByRef(ctx context.Context, ref string) (*model.Driver, error)
	DriverByID(ctx context.Context, id int) (*model.Driver, error)
	History(ctx context.Context, driverID int) (*model.DriverRaceHistory, error)
}

// DbLoader is the Loader implementation over the database repositories.
// It also implements processing.DataSource, caching per-season era DNF
// rates since they are driver independent.
type DbLoader struct {
	conn repository.Querier

	mu       sync.Mutex
	eraRates map[int]float64
}

var _ processing.DataSource = (*DbLoader)(nil)

func NewDbLoader(conn repository.Querier) *DbLoader {
	return &DbLoader{conn: conn, eraRates: make(map[int]float64)}
}

func (l *DbLoader) EligibleDrivers(
	ctx context.Context, minRaces, limit int,
) ([]*model.Driver, error) {
	return driver.LoadEligible(ctx, l.conn, minRaces, limit)
}

func (l *DbLoader) DriverByRef(ctx context.Context, ref string) (*model.Driver, error) {
	return driver.LoadByRef(ctx, l.conn, ref)
}

func (l *DbLoader) DriverByID(ctx context.Context, id int) (*model.Driver, error) {
	return driver.LoadByID(ctx, l.conn, id)
}

func (l *DbLoader) History(ctx context.Context, driverID int) (*model.DriverRaceHistory, error) {
	return history.LoadByDriverID(ctx, l.conn, driverID)
}

func (l *DbLoader) TeammateDnfRate(ctx context.Context, driverID, season int) (float64, error) {
	return history.TeammateDnfRate(ctx, l.conn, driverID, season)
}

func (l *DbLoader) EraAverageDnfRate(ctx context.Context, season int) (float64, error) {
	l.mu.Lock()
	if rate, ok := l.eraRates[season]; ok {
		l.mu.Unlock()
		return rate, nil
	}
	l.mu.Unlock()
	rate, err := history.EraAverageDnfRate(ctx, l.conn, season)
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	l.eraRates[season] = rate
	l.mu.Unlock()
	return rate, nil
}

func (l *DbLoader) StandingPosition(
	ctx context.Context, driverID, season, afterRound int,
) (*int, error) {
	return history.StandingPosition(ctx, l.conn, driverID, season, afterRound)
}
