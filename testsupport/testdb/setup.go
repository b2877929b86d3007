package testdb

import (
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	tcpg "github.com/racingdecoded/driver-dna-go/testsupport/tcpostgres"
)

func InitTestDb() *pgxpool.Pool {
	var pool *pgxpool.Pool

	if os.Getenv("TESTDB_URL") != "" {
		pool = tcpg.SetupExternalTestDb()
	} else {
		pool = tcpg.SetupTestDb()
	}
	if pool == nil {
		log.Fatal("initTestDb: no pool")
	}
	tcpg.ClearAllTables(pool)
	return pool
}
