package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/abrezinsky/aesops/internal/export"
	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/services"
	"github.com/abrezinsky/aesops/internal/standings"
)

func argID(c *cli.Context, i int, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Args().Get(i), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, c.Args().Get(i))
	}
	return v, nil
}

func argRound(c *cli.Context, i int) (int, error) {
	v, err := strconv.Atoi(c.Args().Get(i))
	if err != nil || v < 1 {
		return 0, fmt.Errorf("round must be a positive number, got %q", c.Args().Get(i))
	}
	return v, nil
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func tournamentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tournaments",
		Usage: "list tournaments",
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			list, err := e.tournaments.ListTournaments(ctx)
			if err != nil {
				return err
			}
			tw := table(c.App.Writer)
			fmt.Fprintln(tw, "ID\tDATE\tROUND\tTITLE\tPUBLIC ID")
			for _, t := range list {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", t.ID, t.Date, t.CurrentRound, t.Title, t.PublicID)
			}
			return tw.Flush()
		}),
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "create a tournament",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "event date (YYYY-MM-DD, default today)"},
			&cli.IntFlag{Name: "score-factor", Usage: "score gap weight in pairing costs"},
		},
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			t, err := e.tournaments.CreateTournament(ctx, services.CreateTournament{
				Title:       c.Args().First(),
				Date:        c.String("date"),
				ScoreFactor: c.Int("score-factor"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Created tournament %d (%s)\n", t.ID, t.PublicID)
			return nil
		}),
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "register a participant",
		ArgsUsage: "<tournament-id> <name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "corp", Usage: "corp identity"},
			&cli.StringFlag{Name: "runner", Usage: "runner identity"},
			&cli.BoolFlag{Name: "force", Usage: "allow registering after the tournament started"},
		},
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			tid, err := argID(c, 0, "tournament id")
			if err != nil {
				return err
			}
			p, err := e.participants.Register(ctx, tid, services.Registration{
				Name:           c.Args().Get(1),
				CorpIdentity:   c.String("corp"),
				RunnerIdentity: c.String("runner"),
				Force:          c.Bool("force"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Registered %s as participant %d\n", p.Name, p.ID)
			return nil
		}),
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import a roster from a CSV or XLSX file",
		ArgsUsage: "<tournament-id> <file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "allow importing after the tournament started"},
		},
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			tid, err := argID(c, 0, "tournament id")
			if err != nil {
				return err
			}
			path := c.Args().Get(1)
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			imported, err := e.participants.ImportRoster(ctx, tid, filepath.Base(path), data, c.Bool("force"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Imported %d participants\n", len(imported))
			return nil
		}),
	}
}

func startCommand() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "close registration and pair round 1",
		ArgsUsage: "<tournament-id>",
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			tid, err := argID(c, 0, "tournament id")
			if err != nil {
				return err
			}
			round, err := e.tournaments.StartTournament(ctx, tid)
			if err != nil {
				return err
			}
			return printRound(c.App.Writer, round)
		}),
	}
}

func pairCommand() *cli.Command {
	return &cli.Command{
		Name:      "pair",
		Usage:     "pair a round",
		ArgsUsage: "<tournament-id> <round>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "repair", Usage: "replace existing pairings that have no results"},
		},
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			tid, err := argID(c, 0, "tournament id")
			if err != nil {
				return err
			}
			rnd, err := argRound(c, 1)
			if err != nil {
				return err
			}
			round, err := e.rounds.PairRound(ctx, tid, rnd, services.PairOptions{Repair: c.Bool("repair")})
			if err != nil {
				return err
			}
			return printRound(c.App.Writer, round)
		}),
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "report a table result",
		ArgsUsage: "<match-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "outcome", Usage: "corp_win, runner_win or draw"},
			&cli.IntFlag{Name: "corp", Usage: "corp score"},
			&cli.IntFlag{Name: "runner", Usage: "runner score"},
		},
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			mid, err := argID(c, 0, "match id")
			if err != nil {
				return err
			}
			var m *models.Match
			switch {
			case c.IsSet("outcome"):
				m, err = e.rounds.ReportOutcome(ctx, mid, services.Outcome(c.String("outcome")))
			case c.IsSet("corp") && c.IsSet("runner"):
				m, err = e.rounds.ReportResult(ctx, mid, c.Int("corp"), c.Int("runner"))
			default:
				return fmt.Errorf("either --outcome or both --corp and --runner are required")
			}
			if err != nil {
				return err
			}
			corp, runner := m.Scores()
			fmt.Fprintf(c.App.Writer, "Round %d table %d: %s %d - %d %s\n", m.Round, m.Table, m.CorpName, corp, runner, m.RunnerName)
			return nil
		}),
	}
}

func closeCommand() *cli.Command {
	return &cli.Command{
		Name:      "close",
		Usage:     "close a fully reported round and update standings",
		ArgsUsage: "<tournament-id> <round>",
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			tid, err := argID(c, 0, "tournament id")
			if err != nil {
				return err
			}
			rnd, err := argRound(c, 1)
			if err != nil {
				return err
			}
			table, err := e.rounds.CloseRound(ctx, tid, rnd)
			if err != nil {
				return err
			}
			return printStandings(c.App.Writer, table)
		}),
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:      "standings",
		Usage:     "show the current standings",
		ArgsUsage: "<tournament-id>",
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			tid, err := argID(c, 0, "tournament id")
			if err != nil {
				return err
			}
			table, err := e.standings.Standings(ctx, tid)
			if err != nil {
				return err
			}
			return printStandings(c.App.Writer, table)
		}),
	}
}

func recalculateCommand() *cli.Command {
	return &cli.Command{
		Name:      "recalculate",
		Usage:     "rebuild every participant's statistics from closed rounds",
		ArgsUsage: "<tournament-id>",
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			tid, err := argID(c, 0, "tournament id")
			if err != nil {
				return err
			}
			table, err := e.standings.Recalculate(ctx, tid)
			if err != nil {
				return err
			}
			return printStandings(c.App.Writer, table)
		}),
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "export results as ABR JSON or an XLSX workbook",
		ArgsUsage: "<tournament-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "json", Usage: "json or xlsx"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
		},
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			tid, err := argID(c, 0, "tournament id")
			if err != nil {
				return err
			}

			var data []byte
			switch c.String("format") {
			case "json":
				doc, err := e.standings.Export(ctx, tid)
				if err != nil {
					return err
				}
				w := c.App.Writer
				if out := c.String("out"); out != "" {
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return export.WriteJSON(w, *doc)
			case "xlsx":
				data, err = e.standings.ExportXLSX(ctx, tid)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q, want json or xlsx", c.String("format"))
			}

			out := c.String("out")
			if out == "" {
				return fmt.Errorf("--out is required for xlsx")
			}
			return os.WriteFile(out, data, 0o644)
		}),
	}
}

func identitiesCommand() *cli.Command {
	return &cli.Command{
		Name:  "identities",
		Usage: "list card identities from NetrunnerDB",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "side", Usage: "corp or runner"},
		},
		Action: withEnv(func(ctx context.Context, c *cli.Context, e *env) error {
			ids, err := e.identities.ListIdentities(ctx, c.String("side"))
			if err != nil {
				return err
			}
			tw := table(c.App.Writer)
			fmt.Fprintln(tw, "CODE\tSIDE\tFACTION\tNAME")
			for _, id := range ids {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id.Code, id.Side, id.Faction, id.Name)
			}
			return tw.Flush()
		}),
	}
}

func printRound(w io.Writer, round *models.Round) error {
	fmt.Fprintf(w, "Round %d (%s)\n", round.Number, round.Status)
	tw := table(w)
	fmt.Fprintln(tw, "TABLE\tMATCH\tCORP\tRUNNER\tRESULT")
	for _, m := range round.Matches {
		result := "-"
		if m.Reported() {
			corp, runner := m.Scores()
			result = fmt.Sprintf("%d-%d", corp, runner)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", m.Table, m.ID, m.CorpName, m.RunnerName, result)
	}
	return tw.Flush()
}

func printStandings(w io.Writer, table []standings.Standing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "RANK\tNAME\tSCORE\tSOS\tESOS\tBIAS\t")
	for _, s := range table {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.*f\t%.*f\t%+d\t\n",
			s.Rank, s.Name, s.Score, standings.SoSPlaces, s.SoS, standings.ESoSPlaces, s.ESoS, s.SideBias)
	}
	return tw.Flush()
}
