package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/abrezinsky/aesops/internal/config"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/metrics"
	"github.com/abrezinsky/aesops/internal/pairing"
	"github.com/abrezinsky/aesops/internal/repository"
	"github.com/abrezinsky/aesops/internal/services"
	"github.com/abrezinsky/aesops/pkg/nrdb"
)

// env holds the services a command runs against
type env struct {
	cfg          *config.Config
	repo         *repository.Repository
	tournaments  *services.TournamentService
	participants *services.ParticipantService
	rounds       *services.RoundService
	standings    *services.StandingsService
	identities   *services.IdentityService
}

// openEnv opens the database named by the config and builds the services
func openEnv(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.Database.Path = db
	}

	log := logger.NewWithOptions(c.App.ErrWriter, logger.ParseFormat(cfg.Log.Format), logger.ParseLevel(c.String("loglevel")))

	repo, err := repository.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	settings := services.NewSettingsService(log, repo, cfg.Server.BaseURL)
	rounds := services.NewRoundService(log, repo, metrics.Noop{}, pairing.NewRandomTieBreaker(cfg.Pairing.Seed))
	client := nrdb.NewHTTPClient(cfg.NRDB.URL, cfg.NRDB.Timeout, log,
		nrdb.WithCachePath(cfg.NRDB.CachePath),
		nrdb.WithRateLimit(cfg.NRDB.RequestsPerSecond),
	)

	return &env{
		cfg:          cfg,
		repo:         repo,
		tournaments:  services.NewTournamentService(log, repo, rounds, cfg.Pairing.ScoreFactor),
		participants: services.NewParticipantService(log, repo),
		rounds:       rounds,
		standings:    services.NewStandingsService(log, repo, settings),
		identities:   services.NewIdentityService(log, client),
	}, nil
}

// withEnv wraps an action so it receives an open env that is closed afterwards
func withEnv(action func(ctx context.Context, c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.repo.Close()
		return action(c.Context, c, e)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "aesopsctl",
		Usage:   "run a Swiss tournament from the command line",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "aesops.yaml", Usage: "YAML config file (optional)"},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (overrides config)", EnvVars: []string{"AESOPS_DB"}},
			&cli.StringFlag{Name: "loglevel", Value: "warn", Usage: "log level: debug, info, warn, error"},
		},
		Commands: []*cli.Command{
			tournamentsCommand(),
			createCommand(),
			registerCommand(),
			importCommand(),
			startCommand(),
			pairCommand(),
			reportCommand(),
			closeCommand(),
			standingsCommand(),
			recalculateCommand(),
			exportCommand(),
			identitiesCommand(),
		},
	}
}
