// Package gov holds the base units and shared types of the governance
// engine: fixed-point precision, basis points, campaign types and the
// packed burn/reward/rebate encoding.
package gov

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	// BPS is the basis-points unit. 10000 bps == 100%.
	BPS = 10000

	// MinCampaignOptions and MaxCampaignOptions bound the option list
	// of a single campaign.
	MinCampaignOptions = 2
	MaxCampaignOptions = 8

	// MaxEpochCampaigns caps the number of non-cancelled campaigns
	// touching one epoch.
	MaxEpochCampaigns = 10
)

var (
	// PrecisionUnit is the fixed-point unit, 10^18.
	PrecisionUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// Power128 bounds the formula parameters C and T.
	Power128 = new(big.Int).Lsh(big.NewInt(1), 128)

	maxUint128 = new(big.Int).Sub(Power128, big.NewInt(1))
)

// CampaignType tags what a campaign decides.
type CampaignType uint8

const (
	// General decides an arbitrary policy choice.
	General CampaignType = iota
	// NetworkFee decides the protocol trading fee in bps.
	NetworkFee
	// BurnRewardRebate decides the three-way fee split.
	BurnRewardRebate
)

func (t CampaignType) String() string {
	switch t {
	case General:
		return "general"
	case NetworkFee:
		return "networkFee"
	case BurnRewardRebate:
		return "burnRewardRebate"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a known campaign type.
func (t CampaignType) Valid() bool {
	return t <= BurnRewardRebate
}

// PackBRR packs a reward/rebate pair (both in bps) into a single
// option value, rebate in the high 128 bits and reward in the low.
func PackBRR(rewardBps, rebateBps uint64) (*big.Int, error) {
	if rewardBps+rebateBps > BPS {
		return nil, errors.New("rebate + reward can't be bigger than BPS")
	}
	v := uint256.NewInt(rebateBps)
	v.Lsh(v, 128)
	v.Or(v, uint256.NewInt(rewardBps))
	return v.ToBig(), nil
}

// UnpackBRR splits a packed BRR option value into reward and rebate
// bps. It does not validate the sum; use ValidBRR for that.
func UnpackBRR(data *big.Int) (rewardBps, rebateBps uint64) {
	v, _ := uint256.FromBig(data)
	var reward uint256.Int
	reward.And(v, new(uint256.Int).SetBytes(maxUint128.Bytes()))
	rebate := new(uint256.Int).Rsh(v, 128)
	return reward.Uint64(), rebate.Uint64()
}

// ValidBRR reports whether a packed BRR value is well formed, i.e.
// reward + rebate does not exceed BPS and no stray high bits are set.
func ValidBRR(data *big.Int) bool {
	if data.Sign() < 0 || data.BitLen() > 256 {
		return false
	}
	reward, rebate := UnpackBRR(data)
	if reward > BPS || rebate > BPS {
		return false
	}
	// reject values with bits above the two packed fields
	repacked, err := PackBRR(reward, rebate)
	if err != nil {
		return false
	}
	return repacked.Cmp(data) == 0
}
