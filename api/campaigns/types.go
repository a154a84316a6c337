package campaigns

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/helmdao/helm/dao"
	"github.com/helmdao/helm/gov"
)

// Campaign is the JSON shape of a stored campaign with its live tally.
type Campaign struct {
	ID             uint64                  `json:"id"`
	Type           string                  `json:"type"`
	StartTimestamp uint64                  `json:"startTimestamp"`
	EndTimestamp   uint64                  `json:"endTimestamp"`
	TotalSupply    *math.HexOrDecimal256   `json:"totalSupply"`
	MinPercentage  *math.HexOrDecimal256   `json:"minPercentage"`
	CInPrecision   *math.HexOrDecimal256   `json:"cInPrecision"`
	TInPrecision   *math.HexOrDecimal256   `json:"tInPrecision"`
	Options        []*math.HexOrDecimal256 `json:"options"`
	Link           string                  `json:"link,omitempty"`
	Tally          *Tally                  `json:"tally,omitempty"`
}

// Tally is the JSON shape of a campaign's vote tally.
type Tally struct {
	Total   *math.HexOrDecimal256   `json:"total"`
	Options []*math.HexOrDecimal256 `json:"options"`
}

// CreateCampaign is the POST body of a campaign submission.
type CreateCampaign struct {
	Type           string                  `json:"type"`
	StartTimestamp uint64                  `json:"startTimestamp"`
	EndTimestamp   uint64                  `json:"endTimestamp"`
	MinPercentage  *math.HexOrDecimal256   `json:"minPercentage"`
	CInPrecision   *math.HexOrDecimal256   `json:"cInPrecision"`
	TInPrecision   *math.HexOrDecimal256   `json:"tInPrecision"`
	Options        []*math.HexOrDecimal256 `json:"options"`
	Link           string                  `json:"link,omitempty"`
}

// Winner is the JSON shape of a resolved campaign outcome. A zero
// option means no decision.
type Winner struct {
	CampaignID uint64                `json:"campaignId"`
	Option     uint64                `json:"option"`
	Value      *math.HexOrDecimal256 `json:"value"`
}

func parseCampaignType(s string) (gov.CampaignType, bool) {
	switch s {
	case gov.General.String():
		return gov.General, true
	case gov.NetworkFee.String():
		return gov.NetworkFee, true
	case gov.BurnRewardRebate.String():
		return gov.BurnRewardRebate, true
	default:
		return 0, false
	}
}

func toDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	d := math.HexOrDecimal256(*v)
	return &d
}

func fromDecimal(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}

func convertCampaign(id uint64, c *dao.Campaign, tally *dao.VoteTally) *Campaign {
	out := &Campaign{
		ID:             id,
		Type:           c.CampaignType().String(),
		StartTimestamp: c.StartTimestamp,
		EndTimestamp:   c.EndTimestamp,
		TotalSupply:    toDecimal(c.TotalSupply),
		MinPercentage:  toDecimal(c.MinPercentage),
		CInPrecision:   toDecimal(c.CInPrecision),
		TInPrecision:   toDecimal(c.TInPrecision),
		Link:           string(c.Link),
	}
	for _, option := range c.Options {
		out.Options = append(out.Options, toDecimal(option))
	}
	if tally != nil {
		t := &Tally{Total: toDecimal(tally.Total)}
		for _, bucket := range tally.Options {
			t.Options = append(t.Options, toDecimal(bucket))
		}
		out.Tally = t
	}
	return out
}
