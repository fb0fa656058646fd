package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/americano/internal/domain/tournament"
	qb "github.com/riskibarqy/americano/internal/platform/querybuilder"
	"github.com/riskibarqy/americano/internal/platform/resilience"
)

type TournamentRepository struct {
	db      *sqlx.DB
	breaker *resilience.CircuitBreaker
}

// NewTournamentRepository returns a repository over db. A nil breaker disables circuit breaking.
func NewTournamentRepository(db *sqlx.DB, breaker *resilience.CircuitBreaker) *TournamentRepository {
	return &TournamentRepository{db: db, breaker: breaker}
}

func (r *TournamentRepository) Create(ctx context.Context, item tournament.Tournament) error {
	model, err := toTournamentModel(item)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel(tournamentsTable, model, "")
	if err != nil {
		return crerr.Wrap(err, "build insert tournament query")
	}

	var duplicate bool
	err = r.breaker.Execute(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, args...)
		if isUniqueViolation(err) {
			duplicate = true
			return nil
		}
		return crerr.Wrap(err, "insert tournament")
	})
	if err != nil {
		return err
	}
	if duplicate {
		return crerr.Newf("tournament=%s already exists", item.ID)
	}
	return nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, id string) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select("*").From(tournamentsTable).
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, crerr.Wrap(err, "build get tournament by id query")
	}

	var (
		row    tournamentRow
		exists bool
	)
	err = r.breaker.Execute(ctx, func(ctx context.Context) error {
		if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
			if isNotFound(err) {
				return nil
			}
			return crerr.Wrap(err, "get tournament by id")
		}
		exists = true
		return nil
	})
	if err != nil || !exists {
		return tournament.Tournament{}, false, err
	}

	item, err := row.toDomain()
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	return item, true, nil
}

func (r *TournamentRepository) List(ctx context.Context) ([]tournament.Tournament, error) {
	query, args, err := qb.Select("*").From(tournamentsTable).
		Where(qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build select tournaments query")
	}

	var rows []tournamentRow
	err = r.breaker.Execute(ctx, func(ctx context.Context) error {
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return crerr.Wrap(err, "select tournaments")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Update writes item only when the stored version still equals item.Version and bumps it by one.
func (r *TournamentRepository) Update(ctx context.Context, item tournament.Tournament) error {
	model, err := toTournamentModel(item)
	if err != nil {
		return err
	}
	model.Version = item.Version + 1

	query, args, err := qb.UpdateModel(tournamentsTable, model, []string{"public_id", "created_at"},
		qb.Eq("public_id", item.ID),
		qb.Eq("version", item.Version),
		qb.IsNull("deleted_at"),
	)
	if err != nil {
		return crerr.Wrap(err, "build update tournament query")
	}

	var affected int64
	err = r.breaker.Execute(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return crerr.Wrap(err, "update tournament")
		}
		affected, err = res.RowsAffected()
		return crerr.Wrap(err, "read affected rows")
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return crerr.Wrapf(tournament.ErrVersionConflict, "tournament=%s version=%d", item.ID, item.Version)
	}
	return nil
}
