// Package api assembles the HTTP surface of the governance engine.
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helmdao/helm/api/campaigns"
	"github.com/helmdao/helm/api/epochs"
	"github.com/helmdao/helm/api/fees"
	"github.com/helmdao/helm/api/votes"
	"github.com/helmdao/helm/dao"
)

// New builds the api handler over the engine. now is the clock the
// winner memo trusts to decide whether a campaign is final.
func New(engine *dao.DAO, now func() uint64, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()

	campaigns.New(engine, now).Mount(router, "/campaigns")
	votes.New(engine).Mount(router, "/votes")
	epochs.New(engine).Mount(router, "/epochs")
	fees.New(engine).Mount(router, "")
	router.Path("/metrics").Methods(http.MethodGet).Handler(promhttp.Handler())

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedHeaders([]string{"content-type", campaigns.OperatorHeader}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
	)(handler)
	return metricsHandler(handler)
}
