// Package campaigns exposes campaign submission, inspection,
// cancellation and outcome resolution over HTTP.
package campaigns

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/helmdao/helm/api/utils"
	"github.com/helmdao/helm/dao"
)

// OperatorHeader names the request header carrying the caller
// identity for operator endpoints.
const OperatorHeader = "X-Operator"

const winnerMemoSize = 512

type Campaigns struct {
	engine *dao.DAO
	now    func() uint64

	// winners of ended campaigns never change; memoize them
	winnerMemo *lru.Cache
}

func New(engine *dao.DAO, now func() uint64) *Campaigns {
	memo, _ := lru.New(winnerMemoSize)
	return &Campaigns{
		engine:     engine,
		now:        now,
		winnerMemo: memo,
	}
}

func parseID(req *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func callerAddress(req *http.Request) (common.Address, error) {
	raw := req.Header.Get(OperatorHeader)
	if !common.IsHexAddress(raw) {
		return common.Address{}, utils.Forbidden(errors.New("missing or malformed " + OperatorHeader + " header"))
	}
	return common.HexToAddress(raw), nil
}

func (c *Campaigns) handleGetCampaign(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	campaign, err := c.engine.GetCampaignDetails(id)
	if err != nil {
		return err
	}
	if campaign == nil {
		return utils.NotFound(errors.New("campaign not found"))
	}
	tally, err := c.engine.GetCampaignTally(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertCampaign(id, campaign, tally))
}

func (c *Campaigns) handleGetWinner(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	if cached, ok := c.winnerMemo.Get(id); ok {
		metricWinnerMemoHits.Inc()
		return utils.WriteJSON(w, cached)
	}

	campaign, err := c.engine.GetCampaignDetails(id)
	if err != nil {
		return err
	}
	if campaign == nil {
		return utils.NotFound(errors.New("campaign not found"))
	}

	option, value, err := c.engine.WinningOptionAndValue(id)
	if err != nil {
		return err
	}
	winner := &Winner{CampaignID: id, Option: option, Value: toDecimal(value)}
	if campaign.Ended(c.now()) {
		c.winnerMemo.Add(id, winner)
	}
	return utils.WriteJSON(w, winner)
}

func (c *Campaigns) handleCreateCampaign(w http.ResponseWriter, req *http.Request) error {
	caller, err := callerAddress(req)
	if err != nil {
		return err
	}
	var body CreateCampaign
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	campaignType, ok := parseCampaignType(body.Type)
	if !ok {
		return utils.BadRequest(errors.New("type: unknown campaign type"))
	}
	params := dao.CampaignParams{
		Type:           campaignType,
		StartTimestamp: body.StartTimestamp,
		EndTimestamp:   body.EndTimestamp,
		MinPercentage:  fromDecimal(body.MinPercentage),
		CInPrecision:   fromDecimal(body.CInPrecision),
		TInPrecision:   fromDecimal(body.TInPrecision),
		Link:           []byte(body.Link),
	}
	for _, option := range body.Options {
		params.Options = append(params.Options, fromDecimal(option))
	}

	id, err := c.engine.SubmitNewCampaign(caller, params)
	if err != nil {
		return utils.ConvertEngineError(err)
	}
	metricCampaignsCreated.Inc()
	w.WriteHeader(http.StatusCreated)
	return utils.WriteJSON(w, utils.M{"id": id})
}

func (c *Campaigns) handleCancelCampaign(w http.ResponseWriter, req *http.Request) error {
	caller, err := callerAddress(req)
	if err != nil {
		return err
	}
	id, err := parseID(req)
	if err != nil {
		return err
	}
	if err := c.engine.CancelCampaign(caller, id); err != nil {
		return utils.ConvertEngineError(err)
	}
	metricCampaignsCancelled.Inc()
	return utils.WriteJSON(w, utils.M{"cancelled": id})
}

func (c *Campaigns) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(c.handleCreateCampaign))
	sub.Path("/{id}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(c.handleGetCampaign))
	sub.Path("/{id}").Methods(http.MethodDelete).HandlerFunc(utils.WrapHandlerFunc(c.handleCancelCampaign))
	sub.Path("/{id}/winner").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(c.handleGetWinner))
}
