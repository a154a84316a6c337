package dao

import (
	"github.com/helmdao/helm/gov"
	"github.com/helmdao/helm/storage"
)

// LatestNetworkFeeData returns the most recently resolved network
// fee and its expiry without touching the cache.
func (d *DAO) LatestNetworkFeeData() (feeBps, expiry uint64, err error) {
	data, err := d.store.networkFeeData.Get()
	if err != nil {
		return 0, 0, err
	}
	return data.FeeBps, data.Expiry, nil
}

// LatestNetworkFeeDataWithCache returns the network fee valid for
// the current epoch. If the previous epoch's network-fee campaign
// has ended and has not been folded in yet, it is resolved once and
// the cache updated; a no-winner outcome carries the old fee forward
// with a refreshed expiry. Repeated calls within one epoch hit the
// cache only.
func (d *DAO) LatestNetworkFeeDataWithCache() (feeBps, expiry uint64, err error) {
	err = d.run(func() error {
		data, innerErr := d.store.networkFeeData.Get()
		if innerErr != nil {
			return innerErr
		}
		now := d.now()
		current := d.schedule.EpochNumber(now)
		if data.Expiry >= now || current == 0 {
			feeBps, expiry = data.FeeBps, data.Expiry
			return nil
		}

		campaignID, innerErr := d.store.networkFeeCampaigns.Get(storage.U64Key(current - 1))
		if innerErr != nil {
			return innerErr
		}
		if campaignID != 0 {
			option, value, innerErr := d.WinningOptionAndValue(campaignID)
			if innerErr != nil {
				return innerErr
			}
			if option != 0 {
				data.FeeBps = value.Uint64()
			}
		}
		data.Epoch = current
		data.Expiry = d.schedule.EpochEnd(current)
		if innerErr := d.store.networkFeeData.Set(data, false); innerErr != nil {
			return innerErr
		}
		d.emit(NetworkFeeUpdated{FeeBps: data.FeeBps, Epoch: current})
		feeBps, expiry = data.FeeBps, data.Expiry
		return nil
	})
	return
}

// LatestBRRData returns the most recently resolved burn/reward/
// rebate split without touching the cache.
func (d *DAO) LatestBRRData() (BRRResult, error) {
	data, err := d.store.brrData.Get()
	if err != nil {
		return BRRResult{}, err
	}
	return BRRResult{
		BurnBps:   gov.BPS - data.RewardBps - data.RebateBps,
		RewardBps: data.RewardBps,
		RebateBps: data.RebateBps,
		Epoch:     data.Epoch,
		Expiry:    data.Expiry,
	}, nil
}

// LatestBRRDataWithCache returns the split valid for the current
// epoch, folding in the previous epoch's BRR campaign outcome
// exactly once per epoch, like LatestNetworkFeeDataWithCache.
func (d *DAO) LatestBRRDataWithCache() (result BRRResult, err error) {
	err = d.run(func() error {
		data, innerErr := d.store.brrData.Get()
		if innerErr != nil {
			return innerErr
		}
		now := d.now()
		current := d.schedule.EpochNumber(now)
		if data.Expiry < now && current > 0 {
			campaignID, innerErr := d.store.brrCampaigns.Get(storage.U64Key(current - 1))
			if innerErr != nil {
				return innerErr
			}
			if campaignID != 0 {
				option, value, innerErr := d.WinningOptionAndValue(campaignID)
				if innerErr != nil {
					return innerErr
				}
				if option != 0 {
					data.RewardBps, data.RebateBps = gov.UnpackBRR(value)
				}
			}
			data.Epoch = current
			data.Expiry = d.schedule.EpochEnd(current)
			if innerErr := d.store.brrData.Set(data, false); innerErr != nil {
				return innerErr
			}
			d.emit(BRRUpdated{
				BurnBps:   gov.BPS - data.RewardBps - data.RebateBps,
				RewardBps: data.RewardBps,
				RebateBps: data.RebateBps,
				Epoch:     current,
			})
		}
		result = BRRResult{
			BurnBps:   gov.BPS - data.RewardBps - data.RebateBps,
			RewardBps: data.RewardBps,
			RebateBps: data.RebateBps,
			Epoch:     data.Epoch,
			Expiry:    data.Expiry,
		}
		return nil
	})
	return
}
