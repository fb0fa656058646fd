package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/samber/lo"
)

func renderSchedule(w io.Writer, schedule americano.Schedule, names map[string]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	label := func(ids []string) string {
		return strings.Join(lo.Map(ids, func(id string, _ int) string { return names[id] }), " & ")
	}

	for _, round := range schedule.Rounds {
		_, _ = fmt.Fprintf(tw, "Round %d\n", round.Index)
		if round.IsBreak {
			_, _ = fmt.Fprintln(tw, "  break")
			continue
		}
		for _, m := range round.Matches {
			_, _ = fmt.Fprintf(tw, "  Court %d\t%s\tvs\t%s\n", m.Court, label(m.Team1), label(m.Team2))
		}
		if len(round.Resting) > 0 {
			_, _ = fmt.Fprintf(tw, "  Resting\t%s\n", strings.Join(lo.Map(round.Resting, func(id string, _ int) string {
				return names[id]
			}), ", "))
		}
	}

	stats := schedule.Stats
	_, _ = fmt.Fprintln(tw)
	_, _ = fmt.Fprintf(tw, "Matches\t%d\n", stats.TotalMatches)
	_, _ = fmt.Fprintf(tw, "Games per player\t%d-%d\n", stats.MinGames, stats.MaxGames)
	_, _ = fmt.Fprintf(tw, "Max partner repeat\t%d\n", stats.MaxPartnerRepeat)
	_, _ = fmt.Fprintf(tw, "Max opponent repeat\t%d\n", stats.MaxOpponentRepeat)
	_, _ = fmt.Fprintf(tw, "Variant\t%d (seed %d)\n", stats.Variant, stats.Seed)
	_, _ = fmt.Fprintf(tw, "Evaluations\t%d\n", stats.Evaluations)
	return tw.Flush()
}
