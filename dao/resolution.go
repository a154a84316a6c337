package dao

import (
	"math/big"

	"github.com/helmdao/helm/gov"
)

// WinningOptionAndValue resolves a campaign's outcome. It is a pure
// read, callable at any time, and returns (0, 0) whenever there is
// no winner: unknown or still-open campaign, zero supply snapshot,
// zero turnout, participation below the minimum, a tie for the lead,
// or a leading share under the decaying threshold.
//
// The threshold Y = C - T*X decays with participation X (the voted
// fraction of total supply). A negative Y passes any leading share;
// the leading share must reach Y exactly or better to win.
func (d *DAO) WinningOptionAndValue(id uint64) (uint64, *big.Int, error) {
	zero := new(big.Int)

	campaign, err := d.store.getCampaign(id)
	if err != nil {
		return 0, nil, err
	}
	if campaign == nil || !campaign.Ended(d.now()) {
		return 0, zero, nil
	}
	if campaign.TotalSupply == nil || campaign.TotalSupply.Sign() == 0 {
		return 0, zero, nil
	}

	tally, err := d.store.getTally(id)
	if err != nil {
		return 0, nil, err
	}
	if tally == nil || tally.Total.Sign() == 0 {
		return 0, zero, nil
	}
	totalVotes := tally.Total

	// X: participation as a fixed-point fraction of total supply
	x := new(big.Int).Mul(totalVotes, gov.PrecisionUnit)
	x.Div(x, campaign.TotalSupply)
	if x.Cmp(campaign.MinPercentage) < 0 {
		return 0, zero, nil
	}

	// strictly highest option; a tie is a deliberate no-decision
	winner := 0
	tied := false
	for i := 1; i < len(tally.Options); i++ {
		switch tally.Options[i].Cmp(tally.Options[winner]) {
		case 1:
			winner = i
			tied = false
		case 0:
			tied = true
		}
	}
	if tied {
		return 0, zero, nil
	}

	// Y: the decaying threshold; negative collapses to zero, which
	// any positive leading share clears
	tx := new(big.Int).Mul(campaign.TInPrecision, x)
	tx.Div(tx, gov.PrecisionUnit)
	y := new(big.Int)
	if campaign.CInPrecision.Cmp(tx) > 0 {
		y.Sub(campaign.CInPrecision, tx)
	}

	share := new(big.Int).Mul(tally.Options[winner], gov.PrecisionUnit)
	share.Div(share, totalVotes)
	if share.Cmp(y) < 0 {
		return 0, zero, nil
	}

	return uint64(winner + 1), new(big.Int).Set(campaign.Options[winner]), nil
}
