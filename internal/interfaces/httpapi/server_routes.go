package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/update-scores", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunUpdateScoresJob)))
	mux.Handle("POST /v1/internal/jobs/update-prices", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunUpdatePricesJob)))
	mux.Handle("POST /v1/internal/jobs/seed-entrants", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSeedEntrantsJob)))
}

func registerInternalTeamRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/teams", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CreateTeam)))
	mux.Handle("DELETE /v1/internal/teams/{teamID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.DeleteTeam)))
	mux.Handle("POST /v1/internal/teams/{teamID}/roster", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ApplyRosterEdit)))
}
