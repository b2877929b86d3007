package list

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	calculateCmd "github.com/racingdecoded/driver-dna-go/pkg/cmd/calculate"
	"github.com/racingdecoded/driver-dna-go/pkg/config"
	"github.com/racingdecoded/driver-dna-go/pkg/db/postgres"
	"github.com/racingdecoded/driver-dna-go/pkg/dna"
)

var minRaces int

func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "lists drivers eligible for DNA computation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}
	cmd.Flags().IntVar(&minRaces,
		"min-races",
		5,
		"minimum number of race entries")
	cmd.Flags().IntVar(&config.DriverLimit,
		"driver-limit",
		0,
		"show at most this many drivers (0 = all)")
	return cmd
}

func runList() error {
	sqlLogger := calculateCmd.SetupLogger()
	calculateCmd.WaitForDatabase()

	pool := postgres.InitWithURL(config.DB, postgres.WithTracer(sqlLogger.Sugar()))
	defer postgres.CloseDB()

	loader := dna.NewDbLoader(pool)
	drivers, err := loader.EligibleDrivers(context.Background(), minRaces, config.DriverLimit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDRIVER\tNAME\tRACES")
	for _, d := range drivers {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", d.ID, d.Ref, d.Name(), d.Races)
	}
	return w.Flush()
}
