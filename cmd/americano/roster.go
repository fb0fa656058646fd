package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type rosterFile struct {
	Players  []rosterPlayer  `yaml:"players"`
	Advanced *rosterAdvanced `yaml:"advanced"`
}

type rosterAdvanced struct {
	MaxRepetitions     int            `yaml:"maxRepetitions"`
	PreferredPairings  [][2]string    `yaml:"preferredPairings"`
	AvoidedPairings    [][2]string    `yaml:"avoidedPairings"`
	CourtPreferences   map[string]int `yaml:"courtPreferences"`
	BalanceSkillLevels bool           `yaml:"balanceSkillLevels"`
	PrioritizeFairness bool           `yaml:"prioritizeFairness"`
}

type rosterPlayer struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Skill  int      `yaml:"skill"`
	Sports []string `yaml:"sports"`
}

func loadRoster(path string) (rosterFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return rosterFile{}, fmt.Errorf("read roster %s: %w", path, err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return rosterFile{}, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if len(file.Players) == 0 {
		return rosterFile{}, fmt.Errorf("roster %s has no players", path)
	}
	return file, nil
}

// players falls back to the name, then to the 1-based position, for entries without an id.
func (f rosterFile) players() []americano.Player {
	return lo.Map(f.Players, func(p rosterPlayer, i int) americano.Player {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			id = strings.TrimSpace(p.Name)
		}
		if id == "" {
			id = "p" + strconv.Itoa(i+1)
		}
		return americano.Player{ID: id, Name: strings.TrimSpace(p.Name), Skill: p.Skill, Sports: p.Sports}
	})
}

func (a *rosterAdvanced) options() americano.AdvancedOptions {
	if a == nil {
		return americano.AdvancedOptions{}
	}
	pairings := func(in [][2]string) []americano.Pairing {
		return lo.Map(in, func(p [2]string, _ int) americano.Pairing {
			return americano.Pairing{A: p[0], B: p[1]}
		})
	}
	return americano.AdvancedOptions{
		MaxRepetitions:     a.MaxRepetitions,
		PreferredPairings:  pairings(a.PreferredPairings),
		AvoidedPairings:    pairings(a.AvoidedPairings),
		CourtPreferences:   a.CourtPreferences,
		BalanceSkillLevels: a.BalanceSkillLevels,
		PrioritizeFairness: a.PrioritizeFairness,
	}
}

func playersFromNames(names []string) []americano.Player {
	return lo.Map(names, func(name string, _ int) americano.Player {
		name = strings.TrimSpace(name)
		return americano.Player{ID: name, Name: name}
	})
}

func displayNames(players []americano.Player) map[string]string {
	return lo.SliceToMap(players, func(p americano.Player) (string, string) {
		if p.Name == "" {
			return p.ID, p.ID
		}
		return p.ID, p.Name
	})
}
