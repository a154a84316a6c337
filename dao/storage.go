package dao

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/helmdao/helm/state"
	"github.com/helmdao/helm/storage"
)

// schema is the engine's storage layout. Every mapping lives under
// the engine's own account, one slot per element, so each mutation
// is individually priced by the context's charger.
type schema struct {
	context *storage.Context

	numberCampaigns *storage.Uint256
	campaigns       *storage.Mapping[storage.U64Key, *Campaign]
	tallies         *storage.Mapping[storage.U64Key, *VoteTally]

	epochCampaigns      *storage.Mapping[storage.U64Key, []uint64]
	networkFeeCampaigns *storage.Mapping[storage.U64Key, uint64]
	brrCampaigns        *storage.Mapping[storage.U64Key, uint64]

	epochPoints *storage.Mapping[storage.U64Key, *big.Int]
	stakerVotes *storage.Mapping[storage.PairKey, *voteRecord]

	networkFeeData *storage.Value[feeData]
	brrData        *storage.Value[brrData]
}

func newSchema(addr common.Address, st *state.State, charger storage.UseGasFunc) *schema {
	ctx := storage.NewContext(addr, st, charger)
	return &schema{
		context:             ctx,
		numberCampaigns:     storage.NewUint256(ctx, "number-campaigns"),
		campaigns:           storage.NewMapping[storage.U64Key, *Campaign](ctx, "campaigns"),
		tallies:             storage.NewMapping[storage.U64Key, *VoteTally](ctx, "vote-tallies"),
		epochCampaigns:      storage.NewMapping[storage.U64Key, []uint64](ctx, "epoch-campaigns"),
		networkFeeCampaigns: storage.NewMapping[storage.U64Key, uint64](ctx, "network-fee-campaigns"),
		brrCampaigns:        storage.NewMapping[storage.U64Key, uint64](ctx, "brr-campaigns"),
		epochPoints:         storage.NewMapping[storage.U64Key, *big.Int](ctx, "epoch-points"),
		stakerVotes:         storage.NewMapping[storage.PairKey, *voteRecord](ctx, "staker-votes"),
		networkFeeData:      storage.NewValue[feeData](ctx, "network-fee-data"),
		brrData:             storage.NewValue[brrData](ctx, "brr-data"),
	}
}

func voteKey(staker common.Address, epoch uint64) storage.PairKey {
	return storage.PairKey{A: staker, B: storage.U64Key(epoch)}
}

func (s *schema) getCampaign(id uint64) (*Campaign, error) {
	c, err := s.campaigns.Get(storage.U64Key(id))
	return c, errors.Wrap(err, "get campaign")
}

func (s *schema) setCampaign(id uint64, c *Campaign, isNew bool) error {
	return errors.Wrap(s.campaigns.Set(storage.U64Key(id), c, isNew), "set campaign")
}

func (s *schema) getTally(id uint64) (*VoteTally, error) {
	t, err := s.tallies.Get(storage.U64Key(id))
	return t, errors.Wrap(err, "get tally")
}

func (s *schema) setTally(id uint64, t *VoteTally, isNew bool) error {
	return errors.Wrap(s.tallies.Set(storage.U64Key(id), t, isNew), "set tally")
}

func (s *schema) getEpochCampaigns(epoch uint64) ([]uint64, error) {
	ids, err := s.epochCampaigns.Get(storage.U64Key(epoch))
	return ids, errors.Wrap(err, "get epoch campaigns")
}

func (s *schema) setEpochCampaigns(epoch uint64, ids []uint64) error {
	if len(ids) == 0 {
		s.epochCampaigns.Delete(storage.U64Key(epoch))
		return nil
	}
	return errors.Wrap(s.epochCampaigns.Set(storage.U64Key(epoch), ids, false), "set epoch campaigns")
}

func (s *schema) getPoints(epoch uint64) (*big.Int, error) {
	p, err := s.epochPoints.Get(storage.U64Key(epoch))
	if err != nil {
		return nil, errors.Wrap(err, "get epoch points")
	}
	if p == nil {
		p = new(big.Int)
	}
	return p, nil
}

func (s *schema) setPoints(epoch uint64, p *big.Int) error {
	return errors.Wrap(s.epochPoints.Set(storage.U64Key(epoch), p, false), "set epoch points")
}

func (s *schema) getVoteRecord(staker common.Address, epoch uint64) (*voteRecord, error) {
	r, err := s.stakerVotes.Get(voteKey(staker, epoch))
	if err != nil {
		return nil, errors.Wrap(err, "get vote record")
	}
	if r == nil {
		r = &voteRecord{}
	}
	return r, nil
}

func (s *schema) setVoteRecord(staker common.Address, epoch uint64, r *voteRecord) error {
	return errors.Wrap(s.stakerVotes.Set(voteKey(staker, epoch), r, false), "set vote record")
}
