// Package votes exposes vote submission and per-staker vote lookups
// over HTTP.
package votes

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/helmdao/helm/api/utils"
	"github.com/helmdao/helm/dao"
)

var metricVotesCast = promauto.NewCounter(prometheus.CounterOpts{
	Name: "helm_api_votes_cast_total",
	Help: "Votes accepted through the api.",
})

type Votes struct {
	engine *dao.DAO
}

func New(engine *dao.DAO) *Votes {
	return &Votes{engine: engine}
}

// CastVote is the POST body of a vote.
type CastVote struct {
	CampaignID uint64 `json:"campaignId"`
	Option     uint64 `json:"option"`
	Staker     string `json:"staker"`
}

func (v *Votes) handleCastVote(w http.ResponseWriter, req *http.Request) error {
	var body CastVote
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if !common.IsHexAddress(body.Staker) {
		return utils.BadRequest(errors.New("staker: malformed address"))
	}
	staker := common.HexToAddress(body.Staker)

	if err := v.engine.Vote(body.CampaignID, body.Option, staker); err != nil {
		return utils.ConvertEngineError(err)
	}
	metricVotesCast.Inc()
	return utils.WriteJSON(w, utils.M{
		"campaignId": body.CampaignID,
		"option":     body.Option,
		"staker":     staker,
	})
}

func (v *Votes) handleGetVote(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	if !common.IsHexAddress(vars["staker"]) {
		return utils.BadRequest(errors.New("staker: malformed address"))
	}
	staker := common.HexToAddress(vars["staker"])
	epoch, err := strconv.ParseUint(vars["epoch"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "epoch"))
	}
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}

	option, err := v.engine.VotedOption(staker, epoch, id)
	if err != nil {
		return err
	}
	count, err := v.engine.NumberVotes(staker, epoch)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{
		"option":      option,
		"numberVotes": count,
	})
}

func (v *Votes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(v.handleCastVote))
	sub.Path("/{staker}/{epoch}/{id}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(v.handleGetVote))
}
