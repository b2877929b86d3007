package calculate

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/racingdecoded/driver-dna-go/log"
	"github.com/racingdecoded/driver-dna-go/pkg/config"
	"github.com/racingdecoded/driver-dna-go/pkg/db/postgres"
	"github.com/racingdecoded/driver-dna-go/pkg/dna"
	"github.com/racingdecoded/driver-dna-go/pkg/utils"
)

func NewCalculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "computes DNA profiles for all eligible drivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculate()
		},
	}
	cmd.Flags().IntVarP(&config.Workers,
		"workers",
		"w",
		4,
		"number of drivers processed concurrently")
	cmd.Flags().IntVar(&config.DriverLimit,
		"driver-limit",
		0,
		"process at most this many drivers (0 = all)")
	cmd.Flags().IntVar(&config.MinRaces,
		"min-races",
		0,
		"override the per-trait minimum race thresholds (0 = per-trait defaults)")
	cmd.Flags().StringVar(&config.DriverTimeBudget,
		"time-budget",
		"",
		"per-driver computation budget (e.g. 30s, empty = none)")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger configures the default logger from the global log flags and
// returns the sql logger. Shared by the commands that touch the database.
func SetupLogger() *log.Logger {
	var logger *log.Logger
	var sqlLogger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.New(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if config.LogFilter != "" {
		logger = logger.WithFilterRules(config.LogFilter)
	}
	log.ResetDefault(logger)
	return sqlLogger
}

// WaitForDatabase blocks until the database accepts TCP connections or the
// configured timeout expires.
func WaitForDatabase() {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err := utils.WaitForTCP(postgresAddr, timeout); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}
}

func runCalculate() error {
	sqlLogger := SetupLogger()
	WaitForDatabase()

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
	proc := dna.NewProcessor(
		dna.WithLoader(loader),
		dna.WithDataSource(loader),
		dna.WithStore(dna.NewDbStore(pool)),
		dna.WithSettings(settings),
		dna.WithWorkers(config.Workers),
		dna.WithDriverLimit(config.DriverLimit),
		dna.WithTimeBudget(timeBudget),
	)
	summary, err := proc.ProcessAll(ctx)
	if err != nil {
		return err
	}
	log.Info("calculation finished",
		log.String("batchId", summary.BatchID.String()),
		log.Int("processed", summary.Processed),
		log.Int("failed", summary.Failed),
		log.Duration("duration", summary.Duration))
	return nil
}
