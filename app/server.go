package app

import (
	"context"
	"time"

	"github.com/gorilla/mux"

	"github.com/paw-chain/cfmm/app/health"
)

// StateCheck fails when a registered invariant is broken in the working state.
func (a *App) StateCheck(context.Context) error {
	return a.CheckInvariants(time.Now().UTC())
}

// NewRouter serves health and metrics for the host. extra checks, such as
// the event archive, are checked alongside the state check.
func (a *App) NewRouter(cfg health.Config, extra map[string]health.CheckFunc) *mux.Router {
	checker := health.NewChecker(a.logger, cfg)
	checker.AddCheck("state", a.StateCheck)
	for name, check := range extra {
		checker.AddCheck(name, check)
	}

	router := mux.NewRouter()
	checker.RegisterRoutes(router)
	return router
}
