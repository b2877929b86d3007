package dna

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/sync/errgroup"

	"github.com/racingdecoded/driver-dna-go/log"
	"github.com/racingdecoded/driver-dna-go/pkg/config"
	"github.com/racingdecoded/driver-dna-go/pkg/model"
	"github.com/racingdecoded/driver-dna-go/pkg/processing"
	"github.com/racingdecoded/driver-dna-go/pkg/processing/aggression"
	"github.com/racingdecoded/driver-dna-go/pkg/processing/consistency"
	"github.com/racingdecoded/driver-dna-go/pkg/processing/pressure"
	"github.com/racingdecoded/driver-dna-go/pkg/processing/racecraft"
	"github.com/racingdecoded/driver-dna-go/pkg/processing/racestart"
)

// minimum number of races in a season before a timeline record is computed
const minSeasonRaces = 5

type (
	// Option is used to configure the processor.
	Option func(p *Processor)
	// Processor runs the complete DNA computation for drivers: load
	// history, run the trait calculators, persist profile, breakdown and
	// timeline. One driver failing never aborts a batch.
	Processor struct {
		loader      Loader
		source      processing.DataSource
		store       Store
		settings    *config.Settings
		workers     int
		driverLimit int
		timeBudget  time.Duration
		log         *log.Logger
		now         func() time.Time

		calculators []processing.Calculator
	}
)

func WithLoader(l Loader) Option {
	return func(p *Processor) { p.loader = l }
}

func WithDataSource(src processing.DataSource) Option {
	return func(p *Processor) { p.source = src }
}

func WithStore(s Store) Option {
	return func(p *Processor) { p.store = s }
}

func WithSettings(s *config.Settings) Option {
	return func(p *Processor) { p.settings = s }
}

// WithWorkers sets the number of drivers processed concurrently.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithDriverLimit caps the number of drivers in a batch. 0 means all.
func WithDriverLimit(n int) Option {
	return func(p *Processor) { p.driverLimit = n }
}

// WithTimeBudget sets the per-driver computation budget. 0 means no budget.
func WithTimeBudget(d time.Duration) Option {
	return func(p *Processor) { p.timeBudget = d }
}

func WithLogger(l *log.Logger) Option {
	return func(p *Processor) { p.log = l }
}

func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		settings: config.DefaultSettings(),
		workers:  4,
		log:      log.Default().Named("dna"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.calculators = p.buildCalculators()
	return p
}

func (p *Processor) buildCalculators() []processing.Calculator {
	s := p.settings
	policy := &processing.Policy{
		TrackDifficulty:    s.TrackDifficulty,
		CarCompetitiveness: s.CarCompetitiveness,
	}
	return []processing.Calculator{
		aggression.New(aggression.WithMinRaces(s.MinRacesAggression)),
		consistency.New(
			consistency.WithMinRaces(s.MinRacesConsistency),
			consistency.WithDataSource(p.source),
			consistency.WithPolicy(policy)),
		racecraft.New(
			racecraft.WithMinRaces(s.MinRacesRacecraft),
			racecraft.WithDataSource(p.source),
			racecraft.WithPolicy(policy)),
		pressure.New(
			pressure.WithMinRaces(s.MinRacesPressure),
			pressure.WithDataSource(p.source)),
		racestart.New(racestart.WithMinRaces(s.MinRacesRaceStart)),
	}
}

// minEligibleRaces is the smallest trait threshold. A driver below it cannot
// receive any score.
func (p *Processor) minEligibleRaces() int {
	ret := p.calculators[0].MinRaces()
	for _, c := range p.calculators[1:] {
		if c.MinRaces() < ret {
			ret = c.MinRaces()
		}
	}
	return ret
}

// BatchSummary reports the outcome of a batch run.
type BatchSummary struct {
	BatchID   uuid.UUID
	Processed int
	Failed    int
	Duration  time.Duration
}

// ProcessAll computes DNA for every eligible driver. Per-driver failures are
// logged and counted but never abort the batch.
func (p *Processor) ProcessAll(ctx context.Context) (*BatchSummary, error) {
	start := p.now()
	batchID := uuid.Must(uuid.NewV4())
	drivers, err := p.loader.EligibleDrivers(ctx, p.minEligibleRaces(), p.driverLimit)
	if err != nil {
		return nil, fmt.Errorf("list eligible drivers: %w", err)
	}
	p.log.Info("starting batch",
		log.String("batchId", batchID.String()),
		log.Int("drivers", len(drivers)),
		log.Int("workers", p.workers))

	var mu sync.Mutex
	summary := &BatchSummary{BatchID: batchID}
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, d := range drivers {
		d := d
		g.Go(func() error {
			if err := p.ProcessDriver(gCtx, d, batchID); err != nil {
				p.log.Error("driver failed",
					log.String("driver", d.Ref),
					log.ErrorField(err))
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			summary.Processed++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	summary.Duration = p.now().Sub(start)
	p.log.Info("batch done",
		log.String("batchId", batchID.String()),
		log.Int("processed", summary.Processed),
		log.Int("failed", summary.Failed),
		log.Duration("duration", summary.Duration))
	return summary, nil
}

// ProcessDriver computes and persists the complete DNA of one driver.
func (p *Processor) ProcessDriver(
	ctx context.Context,
	d *model.Driver,
	batchID uuid.UUID,
) error {
	if p.timeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeBudget)
		defer cancel()
	}
	history, err := p.loadHistory(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	for _, rec := range history.Sanitize() {
		p.log.Warn("dropped malformed record",
			log.String("driver", d.Ref),
			log.Int("raceId", rec.RaceID),
			log.String("field", rec.Field),
			log.String("reason", rec.Reason))
	}
	res, err := p.Compute(ctx, d, history, batchID)
	if err != nil {
		return err
	}
	if err := p.store.Save(ctx, res); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	p.log.Info("driver processed",
		log.String("driver", d.Ref),
		log.Int("races", res.Profile.RacesAnalyzed),
		log.Int("seasons", len(res.Timeline)))
	return nil
}

// loadHistory retries once after a short backoff. Transient connection
// errors on a shared pool usually clear on the second attempt.
func (p *Processor) loadHistory(ctx context.Context, driverID int) (
	*model.DriverRaceHistory, error,
) {
	history, err := p.loader.History(ctx, driverID)
	if err == nil {
		return history, nil
	}
	p.log.Warn("history load failed, retrying",
		log.Int("driverId", driverID), log.ErrorField(err))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(500 * time.Millisecond):
	}
	return p.loader.History(ctx, driverID)
}

// Compute runs all trait calculators over the history and assembles the
// result. It does not persist.
func (p *Processor) Compute(
	ctx context.Context,
	d *model.Driver,
	history *model.DriverRaceHistory,
	batchID uuid.UUID,
) (*Result, error) {
	scores, err := p.traitScores(ctx, history)
	if err != nil {
		return nil, err
	}

	prof := p.buildProfile(d, history, scores, batchID)
	breakdowns, err := buildBreakdowns(d.ID, scores)
	if err != nil {
		return nil, err
	}
	tl, err := p.buildTimeline(ctx, history)
	if err != nil {
		return nil, err
	}
	return &Result{Profile: prof, Breakdowns: breakdowns, Timeline: tl}, nil
}

// traitScores runs the calculators concurrently over the same (immutable)
// history. Insufficient data maps to a nil entry, other errors fail the
// driver.
func (p *Processor) traitScores(
	ctx context.Context,
	history *model.DriverRaceHistory,
) (map[string]*model.TraitScore, error) {
	var mu sync.Mutex
	scores := make(map[string]*model.TraitScore)
	g, gCtx := errgroup.WithContext(ctx)
	for _, c := range p.calculators {
		c := c
		g.Go(func() error {
			score, err := c.Calculate(gCtx, history)
			if err != nil {
				if processing.IsInsufficientData(err) {
					return nil
				}
				return fmt.Errorf("trait %s: %w", c.Trait(), err)
			}
			mu.Lock()
			scores[c.Trait()] = score
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (p *Processor) buildProfile(
	d *model.Driver,
	history *model.DriverRaceHistory,
	scores map[string]*model.TraitScore,
	batchID uuid.UUID,
) *model.DriverDnaProfile {
	prof := &model.DriverDnaProfile{
		DriverID:      d.ID,
		DriverName:    d.Name(),
		RacesAnalyzed: len(history.Races),
		CareerSpan:    careerSpan(history),
		LastUpdated:   p.now().UTC(),
		BatchID:       batchID,
	}
	scoreOf := func(trait string) *float64 {
		if s, ok := scores[trait]; ok {
			return s.Score
		}
		return nil
	}
	prof.Aggression = scoreOf(model.TraitAggression)
	prof.Consistency = scoreOf(model.TraitConsistency)
	prof.Racecraft = scoreOf(model.TraitRacecraft)
	prof.Pressure = scoreOf(model.TraitPressure)
	prof.RaceStart = scoreOf(model.TraitRaceStart)

	finishSum, finishCnt := 0.0, 0
	for i := range history.Races {
		r := &history.Races[i]
		if !r.Finished() {
			continue
		}
		if *r.Finish == 1 {
			prof.Wins++
		}
		if *r.Finish <= 3 {
			prof.Podiums++
		}
		finishSum += float64(*r.Finish)
		finishCnt++
	}
	if finishCnt > 0 {
		avg := finishSum / float64(finishCnt)
		prof.AvgFinish = &avg
	}
	return prof
}

func careerSpan(history *model.DriverRaceHistory) string {
	seasons := history.Seasons()
	if len(seasons) == 0 {
		return ""
	}
	first, last := seasons[0], seasons[len(seasons)-1]
	if first == last {
		return fmt.Sprintf("%d", first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}

// buildBreakdowns creates one record per computed trait, in the canonical
// trait order. Traits without a score get no record.
func buildBreakdowns(driverID int, scores map[string]*model.TraitScore) (
	[]*model.DriverDnaBreakdown, error,
) {
	ret := make([]*model.DriverDnaBreakdown, 0, len(scores))
	for _, trait := range model.AllTraits {
		score, ok := scores[trait]
		if !ok || score.Score == nil {
			continue
		}
		statsJSON, err := marshalComponentStats(score.Components)
		if err != nil {
			return nil, err
		}
		ret = append(ret, &model.DriverDnaBreakdown{
			DriverID: driverID,
			Trait:    trait,
			RawValue: score.RawValue,
			Score:    *score.Score,
			Stats:    statsJSON,
			Notes:    score.Notes,
		})
	}
	return ret, nil
}

// buildTimeline reruns the calculators per season, restricted to each
// season's races. Seasons with fewer than minSeasonRaces races are skipped.
func (p *Processor) buildTimeline(ctx context.Context, history *model.DriverRaceHistory) (
	[]*model.DriverDnaTimeline, error,
) {
	ret := make([]*model.DriverDnaTimeline, 0)
	for _, season := range history.Seasons() {
		view := history.SeasonView(season)
		if len(view.Races) < minSeasonRaces {
			continue
		}
		scores, err := p.traitScores(ctx, view)
		if err != nil {
			return nil, err
		}
		scoreOf := func(trait string) *float64 {
			if s, ok := scores[trait]; ok {
				return s.Score
			}
			return nil
		}
		ret = append(ret, &model.DriverDnaTimeline{
			DriverID:    history.DriverID,
			Season:      season,
			Races:       len(view.Races),
			Aggression:  scoreOf(model.TraitAggression),
			Consistency: scoreOf(model.TraitConsistency),
			Racecraft:   scoreOf(model.TraitRacecraft),
			Pressure:    scoreOf(model.TraitPressure),
			RaceStart:   scoreOf(model.TraitRaceStart),
		})
	}
	return ret, nil
}
