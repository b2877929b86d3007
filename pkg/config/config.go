package config

import "github.com/spf13/viper"

// this holds the resolved configuration values from CLI
var (
	DB                 string // connection string for the database
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogFilter          string // zapfilter rules (e.g. "*:info dna.*:debug")
	WaitForServices    string // duration to wait for other services to be ready
	MigrationSourceURL string // location of migration files
	MinRaces           int    // global override for per-trait minimum race thresholds
	Workers            int    // number of concurrent driver computations
	DriverLimit        int    // process at most this many drivers (0 = all)
	DriverTimeBudget   string // per-driver computation time budget
)

// Settings holds the scoring policies read from the config file.
// Anything not present falls back to the documented defaults.
type Settings struct {
	// minimum race counts per trait before a score may be computed
	MinRacesAggression  int `mapstructure:"minRacesAggression"`
	MinRacesConsistency int `mapstructure:"minRacesConsistency"`
	MinRacesRacecraft   int `mapstructure:"minRacesRacecraft"`
	MinRacesPressure    int `mapstructure:"minRacesPressure"`
	MinRacesRaceStart   int `mapstructure:"minRacesRaceStart"`

	// overtaking difficulty multiplier by circuitRef, default 1.0 when unlisted
	TrackDifficulty map[string]float64 `mapstructure:"trackDifficulty"`

	// constructorRef -> competitiveness bucket ("top", "midfield", "backmarker")
	CarCompetitiveness map[string]string `mapstructure:"carCompetitiveness"`
}

func DefaultSettings() *Settings {
	return &Settings{
		MinRacesAggression:  15,
		MinRacesConsistency: 15,
		MinRacesRacecraft:   20,
		MinRacesPressure:    20,
		MinRacesRaceStart:   5,
		TrackDifficulty: map[string]float64{
			"monaco":       3.0,
			"hungaroring":  2.5,
			"marina_bay":   2.3,
			"albert_park":  2.0,
			"catalunya":    1.8,
			"imola":        1.7,
			"jeddah":       1.4,
			"silverstone":  1.3,
			"spa":          1.2,
			"bahrain":      1.1,
			"monza":        1.0,
		},
		CarCompetitiveness: map[string]string{},
	}
}

// LoadSettings merges the "scoring" section of the config file over the
// defaults and applies the global --min-races override.
func LoadSettings() (*Settings, error) {
	s := DefaultSettings()
	if viper.IsSet("scoring") {
		if err := viper.UnmarshalKey("scoring", s); err != nil {
			return nil, err
		}
	}
	if MinRaces > 0 {
		s.MinRacesAggression = MinRaces
		s.MinRacesConsistency = MinRaces
		s.MinRacesRacecraft = MinRaces
		s.MinRacesPressure = MinRaces
		s.MinRacesRaceStart = MinRaces
	}
	return s, nil
}
