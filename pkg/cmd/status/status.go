package status

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	calculateCmd "github.com/racingdecoded/driver-dna-go/pkg/cmd/calculate"
	"github.com/racingdecoded/driver-dna-go/pkg/config"
	"github.com/racingdecoded/driver-dna-go/pkg/db/postgres"
	"github.com/racingdecoded/driver-dna-go/pkg/repository/breakdown"
	"github.com/racingdecoded/driver-dna-go/pkg/repository/profile"
	"github.com/racingdecoded/driver-dna-go/pkg/repository/timeline"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "shows the state of the stored DNA data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	sqlLogger := calculateCmd.SetupLogger()
	calculateCmd.WaitForDatabase()

	pool := postgres.InitWithURL(config.DB, postgres.WithTracer(sqlLogger.Sugar()))
	defer postgres.CloseDB()

	ctx := context.Background()
	profiles, err := profile.Count(ctx, pool)
	if err != nil {
		return err
	}
	breakdowns, err := breakdown.Count(ctx, pool)
	if err != nil {
		return err
	}
	timelines, err := timeline.Count(ctx, pool)
	if err != nil {
		return err
	}
	lastUpdated, err := profile.LastUpdated(ctx, pool)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Profiles:\t%d\n", profiles)
	fmt.Fprintf(w, "Breakdown records:\t%d\n", breakdowns)
	fmt.Fprintf(w, "Timeline records:\t%d\n", timelines)
	if lastUpdated != nil {
		fmt.Fprintf(w, "Last updated:\t%s\n", lastUpdated.Format(time.RFC3339))
	} else {
		fmt.Fprintf(w, "Last updated:\t-\n")
	}
	return w.Flush()
}
