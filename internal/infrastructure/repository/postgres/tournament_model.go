package postgres

import (
	"database/sql"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/riskibarqy/americano/internal/domain/tournament"
)

const tournamentsTable = "tournaments"

// tournamentTableModel maps one row of tournaments. Players, options, schedule and results are
// stored as jsonb documents.
type tournamentTableModel struct {
	PublicID  string         `db:"public_id"`
	Name      string         `db:"name"`
	Courts    int            `db:"courts"`
	Rounds    int            `db:"rounds"`
	Format    string         `db:"format"`
	Sport     string         `db:"sport"`
	Players   string         `db:"players"`
	Options   string         `db:"options"`
	Schedule  sql.NullString `db:"schedule"`
	Results   string         `db:"results"`
	Version   int64          `db:"version"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type tournamentRow struct {
	ID int64 `db:"id"`
	tournamentTableModel
	DeletedAt *time.Time `db:"deleted_at"`
}

func toTournamentModel(item tournament.Tournament) (tournamentTableModel, error) {
	players, err := sonic.MarshalString(item.Players)
	if err != nil {
		return tournamentTableModel{}, crerr.Wrap(err, "encode players")
	}
	options, err := sonic.MarshalString(item.Options)
	if err != nil {
		return tournamentTableModel{}, crerr.Wrap(err, "encode options")
	}
	results := item.Results
	if results == nil {
		results = americano.Results{}
	}
	encodedResults, err := sonic.MarshalString(results)
	if err != nil {
		return tournamentTableModel{}, crerr.Wrap(err, "encode results")
	}

	var schedule sql.NullString
	if item.Schedule != nil {
		raw, err := sonic.MarshalString(item.Schedule)
		if err != nil {
			return tournamentTableModel{}, crerr.Wrap(err, "encode schedule")
		}
		schedule = sql.NullString{String: raw, Valid: true}
	}

	return tournamentTableModel{
		PublicID:  item.ID,
		Name:      item.Name,
		Courts:    item.Courts,
		Rounds:    item.Rounds,
		Format:    string(item.Format),
		Sport:     item.Sport,
		Players:   players,
		Options:   options,
		Schedule:  schedule,
		Results:   encodedResults,
		Version:   item.Version,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}, nil
}

func (m tournamentTableModel) toDomain() (tournament.Tournament, error) {
	item := tournament.Tournament{
		ID:        m.PublicID,
		Name:      m.Name,
		Courts:    m.Courts,
		Rounds:    m.Rounds,
		Format:    americano.Format(m.Format),
		Sport:     m.Sport,
		Results:   americano.Results{},
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}

	if err := sonic.UnmarshalString(m.Players, &item.Players); err != nil {
		return tournament.Tournament{}, crerr.Wrapf(err, "decode players of tournament=%s", m.PublicID)
	}
	if err := sonic.UnmarshalString(m.Options, &item.Options); err != nil {
		return tournament.Tournament{}, crerr.Wrapf(err, "decode options of tournament=%s", m.PublicID)
	}
	if m.Results != "" {
		if err := sonic.UnmarshalString(m.Results, &item.Results); err != nil {
			return tournament.Tournament{}, crerr.Wrapf(err, "decode results of tournament=%s", m.PublicID)
		}
		for key := range item.Results {
			if _, _, err := americano.ParseResultKey(key); err != nil {
				return tournament.Tournament{}, crerr.Wrapf(err, "decode results of tournament=%s", m.PublicID)
			}
		}
	}
	if m.Schedule.Valid {
		var schedule americano.Schedule
		if err := sonic.UnmarshalString(m.Schedule.String, &schedule); err != nil {
			return tournament.Tournament{}, crerr.Wrapf(err, "decode schedule of tournament=%s", m.PublicID)
		}
		item.Schedule = &schedule
	}
	return item, nil
}
