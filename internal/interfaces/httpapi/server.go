package httpapi

import (
	"net/http"

	"github.com/riskibarqy/americano/internal/platform/logging"
)

// NewRouter mounts the API. metrics is served on GET /metrics when non-nil.
func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	metrics http.Handler,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, metrics)
	registerTournamentRoutes(mux, handler)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func registerTournamentRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/tournaments", handler.CreateTournament)
	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}", handler.GetTournament)
	mux.HandleFunc("POST /v1/tournaments/{tournamentID}/schedule", handler.GenerateSchedule)
	mux.HandleFunc("POST /v1/tournaments/{tournamentID}/schedule/regenerate", handler.RegenerateSchedule)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/schedule/variants", handler.PreviewVariants)
	mux.HandleFunc("PUT /v1/tournaments/{tournamentID}/results/{round}/{match}", handler.RecordResult)
	mux.HandleFunc("DELETE /v1/tournaments/{tournamentID}/results/{round}/{match}", handler.ClearResult)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/standings", handler.Standings)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "panic recovered", "panic", rec)
				writeInternalError(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
