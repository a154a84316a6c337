// Package epochs exposes the epoch clock, per-epoch campaign lists
// and reward shares over HTTP.
package epochs

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/helmdao/helm/api/utils"
	"github.com/helmdao/helm/dao"
)

type Epochs struct {
	engine *dao.DAO
}

func New(engine *dao.DAO) *Epochs {
	return &Epochs{engine: engine}
}

func parseEpoch(req *http.Request) (uint64, error) {
	epoch, err := strconv.ParseUint(mux.Vars(req)["epoch"], 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "epoch"))
	}
	return epoch, nil
}

func (e *Epochs) handleGetCurrent(w http.ResponseWriter, _ *http.Request) error {
	current := e.engine.CurrentEpoch()
	out := utils.M{"epoch": current}
	if current > 0 {
		out["start"] = e.engine.Schedule().EpochStart(current)
		out["end"] = e.engine.Schedule().EpochEnd(current)
	}
	return utils.WriteJSON(w, out)
}

func (e *Epochs) handleGetCampaigns(w http.ResponseWriter, req *http.Request) error {
	epoch, err := parseEpoch(req)
	if err != nil {
		return err
	}
	ids, err := e.engine.CampaignIDs(epoch)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return utils.WriteJSON(w, utils.M{
		"epoch":       epoch,
		"campaignIds": ids,
	})
}

func (e *Epochs) handleGetReward(w http.ResponseWriter, req *http.Request) error {
	epoch, err := parseEpoch(req)
	if err != nil {
		return err
	}
	raw := mux.Vars(req)["staker"]
	if !common.IsHexAddress(raw) {
		return utils.BadRequest(errors.New("staker: malformed address"))
	}
	staker := common.HexToAddress(raw)

	// the current epoch's share is a live value, closed epochs are
	// final
	var share *big.Int
	if epoch == e.engine.CurrentEpoch() {
		share, err = e.engine.CurrentEpochRewardPercentage(staker)
	} else {
		share, err = e.engine.PastEpochRewardPercentage(staker, epoch)
	}
	if err != nil {
		return err
	}

	burn, err := e.engine.ShouldBurnRewardForEpoch(epoch)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{
		"epoch":      epoch,
		"staker":     staker,
		"share":      (*math.HexOrDecimal256)(share),
		"shouldBurn": burn,
	})
}

func (e *Epochs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/current").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(e.handleGetCurrent))
	sub.Path("/{epoch}/campaigns").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(e.handleGetCampaigns))
	sub.Path("/{epoch}/reward/{staker}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(e.handleGetReward))
}
