package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Reads only need a valid token; members follow the live board too.
func registerEventReadRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/events/{eventID}/live", RequireAuth(verifier, http.HandlerFunc(handler.GetLiveState)))
	mux.Handle("GET /v1/events/{eventID}/rounds", RequireAuth(verifier, http.HandlerFunc(handler.ListRounds)))
	mux.Handle("GET /v1/events/{eventID}/points", RequireAuth(verifier, http.HandlerFunc(handler.ListPoints)))
}

func registerEventStaffRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	staff := func(fn http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, RequireStaff(fn))
	}

	mux.Handle("POST /v1/events/{eventID}/rounds", staff(handler.AddRounds))
	mux.Handle("POST /v1/events/{eventID}/progress/move", staff(handler.MoveToRound))
	mux.Handle("POST /v1/events/{eventID}/progress/eliminate", staff(handler.Eliminate))
	mux.Handle("PUT /v1/events/{eventID}/winners", staff(handler.SetWinners))
	mux.Handle("POST /v1/events/{eventID}/complete", staff(handler.CompleteEvent))
	mux.Handle("POST /v1/events/{eventID}/reset", staff(handler.ResetProgress))
	mux.Handle("POST /v1/events/{eventID}/open-registration", staff(handler.OpenRegistration))
	mux.Handle("POST /v1/events/{eventID}/start", staff(handler.StartEvent))
	mux.Handle("POST /v1/events/{eventID}/points/adjust", staff(handler.AdjustPoints))
	mux.Handle("POST /v1/events/{eventID}/commands", staff(handler.ExecuteCommand))
}
