package epg

import (
	"fmt"
	"strings"
	"time"

	"epgmerge/config"
	"epgmerge/consts"
)

// Policy names the offset programme timestamps are rewritten to.
type Policy string

const (
	PolicyUTC      Policy = config.TimezonePolicyUTC
	PolicyRegional Policy = config.TimezonePolicyRegional
)

// XMLTV writes the end of a day as hour 24 on some feeds.
const endOfDayClock = "240000"

// Normalizer rewrites XMLTV timestamps to a single fixed offset chosen when
// it is constructed.
type Normalizer struct {
	policy Policy
	target *time.Location
}

// NewNormalizer resolves the target offset. For PolicyRegional the offset is
// the one region observes at the instant at, so a whole run uses the same
// offset even if it straddles a DST change.
func NewNormalizer(policy Policy, region string, at time.Time) (*Normalizer, error) {
	switch policy {
	case PolicyUTC, "":
		return &Normalizer{policy: PolicyUTC, target: time.UTC}, nil
	case PolicyRegional:
		loc, err := time.LoadLocation(region)
		if err != nil {
			return nil, fmt.Errorf("load region %q: %w", region, err)
		}
		name, offset := at.In(loc).Zone()
		return &Normalizer{policy: policy, target: time.FixedZone(name, offset)}, nil
	default:
		return nil, fmt.Errorf("unknown timezone policy %q", policy)
	}
}

// Policy returns the policy the normalizer was built with.
func (n *Normalizer) Policy() Policy { return n.policy }

// Offset returns the target offset in ±hhmm form.
func (n *Normalizer) Offset() string {
	return time.Date(2000, 1, 1, 0, 0, 0, 0, n.target).Format("-0700")
}

// Normalize converts "YYYYMMDDhhmmss ±hhmm" to the target offset. A clock of
// 240000 is read as midnight of the following day. On error the input is
// returned unchanged together with the error.
func (n *Normalizer) Normalize(value string) (string, error) {
	stamp, offset, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || len(stamp) != 14 {
		return value, errMalformedTimestamp
	}

	nextDay := stamp[8:] == endOfDayClock
	if nextDay {
		stamp = stamp[:8] + "000000"
	}
	t, err := time.Parse(consts.TIME_FORMAT, stamp+" "+strings.TrimSpace(offset))
	if err != nil {
		return value, err
	}
	if nextDay {
		t = t.AddDate(0, 0, 1)
	}
	return t.In(n.target).Format(consts.TIME_FORMAT), nil
}
