package dao

import (
	"math/big"

	"github.com/helmdao/helm/gov"
)

// Campaign is a time-boxed proposal. Stored under its ID; IDs are
// allocated from a monotonic counter and never reused, cancellation
// included.
type Campaign struct {
	Type           uint8
	StartTimestamp uint64
	EndTimestamp   uint64
	TotalSupply    *big.Int // governance token supply snapshot at creation
	MinPercentage  *big.Int // fixed-point, precision unit
	CInPrecision   *big.Int
	TInPrecision   *big.Int
	Options        []*big.Int
	Link           []byte
}

// CampaignType returns the typed campaign kind.
func (c *Campaign) CampaignType() gov.CampaignType {
	return gov.CampaignType(c.Type)
}

// Started reports whether the campaign has started at the given time.
func (c *Campaign) Started(now uint64) bool {
	return now >= c.StartTimestamp
}

// Ended reports whether the campaign has ended at the given time.
// The end timestamp itself is still inside the voting window.
func (c *Campaign) Ended(now uint64) bool {
	return now > c.EndTimestamp
}

// VoteTally carries a campaign's per-option weights. The invariant
// sum(Options) == Total holds after every committed operation.
type VoteTally struct {
	Total   *big.Int
	Options []*big.Int
}

func newVoteTally(optionCount int) *VoteTally {
	t := &VoteTally{Total: new(big.Int), Options: make([]*big.Int, optionCount)}
	for i := range t.Options {
		t.Options[i] = new(big.Int)
	}
	return t
}

// voteEntry records one cast vote: the campaign and the chosen
// option (1-based).
type voteEntry struct {
	CampaignID uint64
	Option     uint64
}

// voteRecord is a staker's per-epoch voting record. It grows only on
// first votes; revotes update the entry in place.
type voteRecord struct {
	Entries []voteEntry
}

func (r *voteRecord) find(campaignID uint64) *voteEntry {
	for i := range r.Entries {
		if r.Entries[i].CampaignID == campaignID {
			return &r.Entries[i]
		}
	}
	return nil
}

// feeData is the memoized network-fee outcome.
type feeData struct {
	FeeBps uint64
	Epoch  uint64
	Expiry uint64
}

// brrData is the memoized burn/reward/rebate outcome.
type brrData struct {
	RewardBps uint64
	RebateBps uint64
	Epoch     uint64
	Expiry    uint64
}

// BRRResult is the decoded burn/reward/rebate split.
type BRRResult struct {
	BurnBps   uint64
	RewardBps uint64
	RebateBps uint64
	Epoch     uint64
	Expiry    uint64
}
