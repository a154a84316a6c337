package gov

import "github.com/pkg/errors"

// Schedule defines the epoch timeline: fixed-length windows starting
// at StartTime. Timestamps before StartTime belong to epoch 0; the
// first window is epoch 1.
type Schedule struct {
	Period    uint64 // seconds per epoch, > 0
	StartTime uint64 // unix seconds of the first epoch's start
}

// NewSchedule validates and builds a schedule. now is the caller's
// current time, used to reject a start in the past.
func NewSchedule(period, startTime, now uint64) (Schedule, error) {
	if period == 0 {
		return Schedule{}, errors.New("ctor: epoch period is 0")
	}
	if startTime < now {
		return Schedule{}, errors.New("ctor: start in the past")
	}
	return Schedule{Period: period, StartTime: startTime}, nil
}

// EpochNumber maps a timestamp onto the epoch timeline.
func (s Schedule) EpochNumber(timestamp uint64) uint64 {
	if timestamp < s.StartTime {
		return 0
	}
	return (timestamp-s.StartTime)/s.Period + 1
}

// EpochStart returns the first second of the given epoch. Epoch 0
// has no defined start; it returns 0.
func (s Schedule) EpochStart(epoch uint64) uint64 {
	if epoch == 0 {
		return 0
	}
	return s.StartTime + (epoch-1)*s.Period
}

// EpochEnd returns the last second of the given epoch. For epoch 0
// that is the second before StartTime.
func (s Schedule) EpochEnd(epoch uint64) uint64 {
	return s.StartTime + epoch*s.Period - 1
}

// SameEpoch reports whether two timestamps fall into the same epoch.
func (s Schedule) SameEpoch(a, b uint64) bool {
	return s.EpochNumber(a) == s.EpochNumber(b)
}
