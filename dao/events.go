package dao

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/helmdao/helm/gov"
)

// Event is a governance engine event.
type Event interface{ dao() }

// NewCampaignCreated carries the full parameters of a submitted
// campaign.
type NewCampaignCreated struct {
	CampaignID     uint64
	Type           gov.CampaignType
	StartTimestamp uint64
	EndTimestamp   uint64
	MinPercentage  *big.Int
	CInPrecision   *big.Int
	TInPrecision   *big.Int
	Options        []*big.Int
	Link           []byte
}

// CampaignCancelled is emitted when a not-yet-started campaign is
// cancelled.
type CampaignCancelled struct {
	CampaignID uint64
}

// Voted is emitted for every accepted vote call, revotes included.
type Voted struct {
	Staker     common.Address
	Epoch      uint64
	CampaignID uint64
	Option     uint64
}

// NetworkFeeUpdated is emitted when the fee cache folds in a new
// epoch outcome.
type NetworkFeeUpdated struct {
	FeeBps uint64
	Epoch  uint64
}

// BRRUpdated is emitted when the BRR cache folds in a new epoch
// outcome.
type BRRUpdated struct {
	BurnBps   uint64
	RewardBps uint64
	RebateBps uint64
	Epoch     uint64
}

func (NewCampaignCreated) dao() {}
func (CampaignCancelled) dao()  {}
func (Voted) dao()              {}
func (NetworkFeeUpdated) dao()  {}
func (BRRUpdated) dao()         {}
