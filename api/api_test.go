package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmdao/helm/api"
	"github.com/helmdao/helm/api/campaigns"
	"github.com/helmdao/helm/dao"
	"github.com/helmdao/helm/gov"
	"github.com/helmdao/helm/staking"
	"github.com/helmdao/helm/state"
)

var (
	engineAddr  = common.BytesToAddress([]byte("dao"))
	stakingAddr = common.BytesToAddress([]byte("staking"))
	operator    = common.BytesToAddress([]byte("operator"))
	mike        = common.BytesToAddress([]byte("mike"))
)

type testServer struct {
	t      *testing.T
	now    uint64
	ledger *staking.Ledger
	engine *dao.DAO
	srv    *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{t: t, now: 1000}
	st := state.New()
	schedule, err := gov.NewSchedule(100, 1000, 1000)
	require.NoError(t, err)

	ts.ledger = staking.New(stakingAddr, st, schedule, func() uint64 { return ts.now })
	ts.engine, err = dao.New(
		engineAddr,
		st,
		ts.ledger,
		func() (*big.Int, error) { return big.NewInt(1000), nil },
		func() uint64 { return ts.now },
		dao.Config{
			EpochPeriod:          100,
			StartTime:            1000,
			MinCampaignDuration:  10,
			DefaultNetworkFeeBps: 25,
			DefaultRewardBps:     3000,
			DefaultRebateBps:     2000,
			Operator:             operator,
			StakingAddress:       stakingAddr,
		},
		dao.WithEventSink(api.EventSink),
	)
	require.NoError(t, err)
	ts.ledger.SetGovernance(ts.engine)

	ts.srv = httptest.NewServer(api.New(ts.engine, func() uint64 { return ts.now }, []string{"*"}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) request(method, path string, body string, headers map[string]string) (int, []byte) {
	ts.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(ts.t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(ts.t, err)
	return res.StatusCode, data
}

func (ts *testServer) asOperator() map[string]string {
	return map[string]string{campaigns.OperatorHeader: operator.Hex()}
}

func campaignBody(start, end uint64) string {
	return fmt.Sprintf(`{
		"type": "general",
		"startTimestamp": %d,
		"endTimestamp": %d,
		"minPercentage": "0",
		"cInPrecision": "0",
		"tInPrecision": "0",
		"options": ["1", "2"]
	}`, start, end)
}

func TestCampaignLifecycle(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.request(http.MethodPost, "/campaigns", campaignBody(1000, 1099), nil)
	assert.Equal(t, http.StatusForbidden, code, "no operator header")

	code, _ = ts.request(http.MethodPost, "/campaigns", campaignBody(1000, 1099),
		map[string]string{campaigns.OperatorHeader: mike.Hex()})
	assert.Equal(t, http.StatusForbidden, code, "wrong operator")

	code, body := ts.request(http.MethodPost, "/campaigns", campaignBody(1050, 1099), ts.asOperator())
	require.Equal(t, http.StatusCreated, code, string(body))
	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.EqualValues(t, 1, created.ID)

	code, body = ts.request(http.MethodGet, "/campaigns/1", "", nil)
	require.Equal(t, http.StatusOK, code)
	var got campaigns.Campaign
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "general", got.Type)
	assert.EqualValues(t, 1050, got.StartTimestamp)
	assert.EqualValues(t, 1000, (*big.Int)(got.TotalSupply).Int64())
	require.NotNil(t, got.Tally)
	assert.Len(t, got.Tally.Options, 2)

	// bad submissions surface the engine's reason
	code, body = ts.request(http.MethodPost, "/campaigns", campaignBody(900, 1099), ts.asOperator())
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(body), "start in the past")

	code, _ = ts.request(http.MethodDelete, "/campaigns/1", "", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = ts.request(http.MethodDelete, "/campaigns/1", "", ts.asOperator())
	assert.Equal(t, http.StatusOK, code)

	code, _ = ts.request(http.MethodGet, "/campaigns/1", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestVoteFlow(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.ledger.Deposit(mike, big.NewInt(100)))
	ts.now = 1100 // epoch 2, the deposit counts

	code, body := ts.request(http.MethodPost, "/campaigns", campaignBody(1100, 1199), ts.asOperator())
	require.Equal(t, http.StatusCreated, code, string(body))

	vote := fmt.Sprintf(`{"campaignId": 1, "option": 2, "staker": %q}`, mike.Hex())
	code, body = ts.request(http.MethodPost, "/votes", vote, nil)
	require.Equal(t, http.StatusOK, code, string(body))

	code, body = ts.request(http.MethodGet, "/campaigns/1", "", nil)
	require.Equal(t, http.StatusOK, code)
	var got campaigns.Campaign
	require.NoError(t, json.Unmarshal(body, &got))
	assert.EqualValues(t, 100, (*big.Int)(got.Tally.Total).Int64())

	code, body = ts.request(http.MethodGet, fmt.Sprintf("/votes/%s/2/1", mike.Hex()), "", nil)
	require.Equal(t, http.StatusOK, code)
	var voted struct {
		Option      uint64 `json:"option"`
		NumberVotes uint64 `json:"numberVotes"`
	}
	require.NoError(t, json.Unmarshal(body, &voted))
	assert.EqualValues(t, 2, voted.Option)
	assert.EqualValues(t, 1, voted.NumberVotes)

	// lifecycle reverts map to 400
	code, body = ts.request(http.MethodPost, "/votes", `{"campaignId": 9, "option": 1, "staker": "0x0000000000000000000000000000000000000001"}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(body), "campaign doesn't exist")
}

func TestWinnerEndpoint(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.ledger.Deposit(mike, big.NewInt(100)))
	ts.now = 1100

	code, body := ts.request(http.MethodPost, "/campaigns", campaignBody(1100, 1199), ts.asOperator())
	require.Equal(t, http.StatusCreated, code, string(body))
	vote := fmt.Sprintf(`{"campaignId": 1, "option": 2, "staker": %q}`, mike.Hex())
	code, _ = ts.request(http.MethodPost, "/votes", vote, nil)
	require.Equal(t, http.StatusOK, code)

	// still open: no decision yet
	code, body = ts.request(http.MethodGet, "/campaigns/1/winner", "", nil)
	require.Equal(t, http.StatusOK, code)
	var winner campaigns.Winner
	require.NoError(t, json.Unmarshal(body, &winner))
	assert.Zero(t, winner.Option)

	ts.now = 1250
	for i := 0; i < 2; i++ { // the second read hits the memo
		code, body = ts.request(http.MethodGet, "/campaigns/1/winner", "", nil)
		require.Equal(t, http.StatusOK, code)
		require.NoError(t, json.Unmarshal(body, &winner))
		assert.EqualValues(t, 2, winner.Option)
		assert.EqualValues(t, 2, (*big.Int)(winner.Value).Int64())
	}

	code, _ = ts.request(http.MethodGet, "/campaigns/9/winner", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFeeEndpoints(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.request(http.MethodGet, "/fee", "", nil)
	require.Equal(t, http.StatusOK, code)
	var fee struct {
		FeeBps uint64 `json:"feeBps"`
		Expiry uint64 `json:"expiry"`
	}
	require.NoError(t, json.Unmarshal(body, &fee))
	assert.EqualValues(t, 25, fee.FeeBps)

	ts.now = 1150
	code, body = ts.request(http.MethodGet, "/fee?cache=true", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &fee))
	assert.EqualValues(t, 25, fee.FeeBps)
	assert.EqualValues(t, 1199, fee.Expiry, "the cached read rolls the expiry forward")

	code, body = ts.request(http.MethodGet, "/brr", "", nil)
	require.Equal(t, http.StatusOK, code)
	var brr struct {
		BurnBps   uint64 `json:"burnBps"`
		RewardBps uint64 `json:"rewardBps"`
		RebateBps uint64 `json:"rebateBps"`
	}
	require.NoError(t, json.Unmarshal(body, &brr))
	assert.EqualValues(t, 5000, brr.BurnBps)
	assert.EqualValues(t, 3000, brr.RewardBps)
	assert.EqualValues(t, 2000, brr.RebateBps)
}

func TestEpochEndpoints(t *testing.T) {
	ts := newTestServer(t)
	code, body := ts.request(http.MethodPost, "/campaigns", campaignBody(1000, 1099), ts.asOperator())
	require.Equal(t, http.StatusCreated, code, string(body))

	code, body = ts.request(http.MethodGet, "/epochs/current", "", nil)
	require.Equal(t, http.StatusOK, code)
	var current struct {
		Epoch uint64 `json:"epoch"`
		Start uint64 `json:"start"`
		End   uint64 `json:"end"`
	}
	require.NoError(t, json.Unmarshal(body, &current))
	assert.EqualValues(t, 1, current.Epoch)
	assert.EqualValues(t, 1000, current.Start)
	assert.EqualValues(t, 1099, current.End)

	code, body = ts.request(http.MethodGet, "/epochs/1/campaigns", "", nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		CampaignIDs []uint64 `json:"campaignIds"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, []uint64{1}, list.CampaignIDs)

	code, body = ts.request(http.MethodGet, "/epochs/2/campaigns", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list.CampaignIDs)
}

func TestMetricsExposed(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodGet, "/epochs/current", "", nil)

	code, body := ts.request(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "helm_api_request_total")
}
