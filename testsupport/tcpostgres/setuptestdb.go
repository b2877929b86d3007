//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/racingdecoded/driver-dna-go/pkg/db/migrate"
	database "github.com/racingdecoded/driver-dna-go/pkg/db/postgres"
)

// create a pg connection pool for the driver-dna testdatabase
func SetupTestDb() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal(err)
	}
	container, err := SetupPostgres(ctx,
		WithPort(port.Port()),
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("driver-dna-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbUrl := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres",
		host, containerPort.Port())

	if err = migrate.MigrateDb(dbUrl); err != nil {
		log.Fatal(err)
	}

	pool := database.InitWithURL(dbUrl)
	return pool
}

// SetupExternalTestDb connects to the database at TESTDB_URL and applies
// the migrations.
func SetupExternalTestDb() *pgxpool.Pool {
	dbUrl := os.Getenv("TESTDB_URL")
	if err := migrate.MigrateDb(dbUrl); err != nil {
		log.Fatal(err)
	}
	return database.InitWithURL(dbUrl)
}

func ClearDnaTables(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from drivers_dna_timeline")
	pool.Exec(context.Background(), "delete from drivers_dna_breakdown")
	pool.Exec(context.Background(), "delete from drivers_dna_profiles")
}

func ClearRaceDataTables(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from driver_standings")
	pool.Exec(context.Background(), "delete from pit_stops")
	pool.Exec(context.Background(), "delete from lap_times")
	pool.Exec(context.Background(), "delete from qualifying")
	pool.Exec(context.Background(), "delete from results")
	pool.Exec(context.Background(), "delete from races")
}

func ClearDriverTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from drivers")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearDnaTables(pool)
	ClearRaceDataTables(pool)
	ClearDriverTable(pool)
}
