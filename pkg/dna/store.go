package dna

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/repository/breakdown"
	"github.com/racingdecoded/driver-dna-go/pkg/repository/profile"
	"github.com/racingdecoded/driver-dna-go/pkg/repository/timeline"
)

// Result is everything computed for one driver, persisted atomically.
type Result struct {
	Profile    *model.DriverDnaProfile
	Breakdowns []*model.DriverDnaBreakdown
	Timeline   []*model.DriverDnaTimeline
}

// Store persists the computation result of one driver.
type Store interface {
	Save(ctx context.Context, res *Result) error
}

// DbStore writes profile, breakdown and timeline in a single transaction.
type DbStore struct {
	pool *pgxpool.Pool
}

func NewDbStore(pool *pgxpool.Pool) *DbStore {
	return &DbStore{pool: pool}
}

func (s *DbStore) Save(ctx context.Context, res *Result) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := profile.Upsert(ctx, tx, res.Profile); err != nil {
			return err
		}
		if err := breakdown.ReplaceForDriver(
			ctx, tx, res.Profile.DriverID, res.Breakdowns); err != nil {
			return err
		}
		for _, t := range res.Timeline {
			if err := timeline.Upsert(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// marshalComponentStats serializes a trait's components as one JSON object
// keyed by component name, preserving component order.
func marshalComponentStats(components []model.ComponentResult) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range components {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(components[i].Name)
		if err != nil {
			return "", err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if components[i].Stats == nil {
			buf.WriteString("{}")
			continue
		}
		val, err := json.Marshal(components[i].Stats)
		if err != nil {
			return "", fmt.Errorf("marshal stats for %s: %w", components[i].Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}
