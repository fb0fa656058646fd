package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "americano:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "americano",
		Usage:     "build Americano rotation schedules offline",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "generate a schedule for a roster",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "player", Aliases: []string{"p"}, Usage: "player name, repeatable"},
					&cli.StringFlag{Name: "roster", Aliases: []string{"r"}, Usage: "yaml roster file"},
					&cli.IntFlag{Name: "courts", Aliases: []string{"c"}, Value: 1},
					&cli.IntFlag{Name: "rounds", Aliases: []string{"n"}, Value: 7},
					&cli.StringFlag{Name: "format", Value: string(americano.FormatDoubles), Usage: "doubles or singles"},
					&cli.StringFlag{Name: "sport", Usage: "only schedule players eligible for this sport"},
					&cli.IntFlag{Name: "regenerate", Usage: "regenerate counter selecting the variant"},
					&cli.StringFlag{Name: "event-id", Usage: "event id mixed into the seed"},
					&cli.IntSliceFlag{Name: "break", Usage: "1-based break round, repeatable"},
					&cli.BoolFlag{Name: "json", Usage: "print the schedule as json"},
				},
				Action: generate,
			},
		},
	}
}

func generate(c *cli.Context) error {
	req, err := requestFromFlags(c)
	if err != nil {
		return err
	}

	schedule, err := americano.Generate(req)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		body, err := sonic.ConfigStd.MarshalIndent(schedule, "", "  ")
		if err != nil {
			return fmt.Errorf("encode schedule: %w", err)
		}
		_, err = fmt.Fprintln(c.App.Writer, string(body))
		return err
	}
	return renderSchedule(c.App.Writer, schedule, displayNames(req.Players))
}

func requestFromFlags(c *cli.Context) (americano.Request, error) {
	rosterPath := strings.TrimSpace(c.String("roster"))
	names := c.StringSlice("player")

	var (
		file    rosterFile
		players []americano.Player
		err     error
	)
	switch {
	case rosterPath != "" && len(names) > 0:
		return americano.Request{}, fmt.Errorf("use either --roster or --player, not both")
	case rosterPath != "":
		file, err = loadRoster(rosterPath)
		if err != nil {
			return americano.Request{}, err
		}
		players = file.players()
	case len(names) > 0:
		players = playersFromNames(names)
	default:
		return americano.Request{}, fmt.Errorf("a roster is required (--roster or --player)")
	}

	req := americano.Request{
		Players: players,
		Courts:  c.Int("courts"),
		Rounds:  c.Int("rounds"),
		Format:  americano.Format(strings.ToLower(strings.TrimSpace(c.String("format")))),
		Sport:   c.String("sport"),
		Options: americano.Options{
			RegenerateCount: c.Int("regenerate"),
			EventID:         c.String("event-id"),
			BreakRounds:     c.IntSlice("break"),
			Advanced:        file.Advanced.options(),
		},
	}
	return req, nil
}
