package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/americano/internal/domain/tournament"
	"github.com/riskibarqy/americano/internal/platform/logging"
	"github.com/riskibarqy/americano/internal/usecase"
	"github.com/samber/lo"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	tournaments *usecase.TournamentService
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(tournaments *usecase.TournamentService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		tournaments: tournaments,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

// fail logs at warn for client errors and at error for everything the client cannot fix.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if mapError(err).HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	writeError(ctx, w, err)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTournament")
	defer span.End()

	var req createTournamentRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.tournaments.CreateTournament(ctx, req.toInput())
	if err != nil {
		h.fail(ctx, w, "create tournament failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, tournamentToDTO(item))
}

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	items, err := h.tournaments.ListTournaments(ctx)
	if err != nil {
		h.fail(ctx, w, "list tournaments failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lo.Map(items, func(item tournament.Tournament, _ int) tournamentSummaryDTO {
		return tournamentToSummaryDTO(item)
	}))
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	item, err := h.tournaments.GetTournament(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "get tournament failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item))
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateSchedule")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	item, err := h.tournaments.GenerateSchedule(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "generate schedule failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item))
}

func (h *Handler) RegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegenerateSchedule")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	item, err := h.tournaments.RegenerateSchedule(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "regenerate schedule failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item))
}

func (h *Handler) PreviewVariants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewVariants")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	previews, err := h.tournaments.PreviewVariants(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "preview variants failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lo.Map(previews, previewToDTO))
}

func (h *Handler) RecordResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordResult")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	roundIndex, matchIndex, err := matchPosition(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req recordResultRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.tournaments.RecordResult(ctx, tournamentID, roundIndex, matchIndex, req.toResult())
	if err != nil {
		h.fail(ctx, w, "record result failed", err,
			"tournament_id", tournamentID,
			"round", roundIndex,
			"match", matchIndex,
		)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item))
}

func (h *Handler) ClearResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearResult")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	roundIndex, matchIndex, err := matchPosition(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.tournaments.ClearResult(ctx, tournamentID, roundIndex, matchIndex)
	if err != nil {
		h.fail(ctx, w, "clear result failed", err,
			"tournament_id", tournamentID,
			"round", roundIndex,
			"match", matchIndex,
		)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item))
}

func (h *Handler) Standings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Standings")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	table, err := h.tournaments.Standings(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "standings failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(table))
}

// matchPosition reads the 0-based round and match indices from the path.
func matchPosition(r *http.Request) (int, int, error) {
	roundIndex, err := strconv.Atoi(strings.TrimSpace(r.PathValue("round")))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: round must be an integer", usecase.ErrInvalidInput)
	}
	matchIndex, err := strconv.Atoi(strings.TrimSpace(r.PathValue("match")))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: match must be an integer", usecase.ErrInvalidInput)
	}
	return roundIndex, matchIndex, nil
}
