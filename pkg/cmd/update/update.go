package update

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/racingdecoded/driver-dna-go/log"
	calculateCmd "github.com/racingdecoded/driver-dna-go/pkg/cmd/calculate"
	"github.com/racingdecoded/driver-dna-go/pkg/config"
	"github.com/racingdecoded/driver-dna-go/pkg/db/postgres"
	"github.com/racingdecoded/driver-dna-go/pkg/dna"
)

func NewUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update driverRef",
		Short: "recomputes the DNA profile of a single driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(args[0])
		},
	}
	cmd.Flags().IntVar(&config.MinRaces,
		"min-races",
		0,
		"override the per-trait minimum race thresholds (0 = per-trait defaults)")
	cmd.Flags().StringVar(&config.DriverTimeBudget,
		"time-budget",
		"",
		"computation budget (e.g. 30s, empty = none)")
	return cmd
}

func runUpdate(driverRef string) error {
	sqlLogger := calculateCmd.SetupLogger()
	calculateCmd.WaitForDatabase()

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	var timeBudget time.Duration
	if config.DriverTimeBudget != "" {
		if timeBudget, err = time.ParseDuration(config.DriverTimeBudget); err != nil {
			log.Warn("Invalid time budget, ignoring", log.ErrorField(err))
			timeBudget = 0
		}
	}

	pool := postgres.InitWithURL(config.DB, postgres.WithTracer(sqlLogger.Sugar()))
	defer postgres.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := dna.NewDbLoader(pool)
	d, err := loader.DriverByRef(ctx, driverRef)
	if err != nil {
		return err
	}
	proc := dna.NewProcessor(
		dna.WithLoader(loader),
		dna.WithDataSource(loader),
		dna.WithStore(dna.NewDbStore(pool)),
		dna.WithSettings(settings),
		dna.WithTimeBudget(timeBudget),
	)
	batchID := uuid.Must(uuid.NewV4())
	if err := proc.ProcessDriver(ctx, d, batchID); err != nil {
		return err
	}
	log.Info("driver updated",
		log.String("driver", d.Ref),
		log.String("batchId", batchID.String()))
	return nil
}
