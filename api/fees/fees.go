// Package fees exposes the network fee and burn/reward/rebate result
// caches over HTTP. With ?cache=true the read folds in the previous
// epoch's outcome, like an on-chain caller would.
package fees

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/helmdao/helm/api/utils"
	"github.com/helmdao/helm/dao"
)

type Fees struct {
	engine *dao.DAO
}

func New(engine *dao.DAO) *Fees {
	return &Fees{engine: engine}
}

func useCache(req *http.Request) bool {
	return req.URL.Query().Get("cache") == "true"
}

func (f *Fees) handleGetFee(w http.ResponseWriter, req *http.Request) error {
	var (
		fee, expiry uint64
		err         error
	)
	if useCache(req) {
		fee, expiry, err = f.engine.LatestNetworkFeeDataWithCache()
	} else {
		fee, expiry, err = f.engine.LatestNetworkFeeData()
	}
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{
		"feeBps": fee,
		"expiry": expiry,
	})
}

func (f *Fees) handleGetBRR(w http.ResponseWriter, req *http.Request) error {
	var (
		result dao.BRRResult
		err    error
	)
	if useCache(req) {
		result, err = f.engine.LatestBRRDataWithCache()
	} else {
		result, err = f.engine.LatestBRRData()
	}
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{
		"burnBps":   result.BurnBps,
		"rewardBps": result.RewardBps,
		"rebateBps": result.RebateBps,
		"epoch":     result.Epoch,
		"expiry":    result.Expiry,
	})
}

func (f *Fees) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/fee").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(f.handleGetFee))
	sub.Path("/brr").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(f.handleGetBRR))
}
