package enrich

import (
	"time"

	"wander/internal/domain/place"
)

// isOpenAt computes whether a weekly schedule is open at the given moment.
// The provider's own "open now" flag is deprecated upstream and never
// trusted; this derivation from the period table is authoritative here.
//
// When the schedule carries a UTC offset the moment is shifted into the
// place's local time first; otherwise the caller's wall clock is used
// as-is (the schedule's frame of reference is ambiguous without the
// offset, and the caller's clock is the least surprising choice).
func isOpenAt(periods []place.OpeningPeriod, utcOffsetMin *int, now time.Time) bool {
	if len(periods) == 0 {
		return false
	}

	local := now
	if utcOffsetMin != nil {
		local = now.UTC().Add(time.Duration(*utcOffsetMin) * time.Minute)
	}

	day := int(local.Weekday())
	minutes := local.Hour()*60 + local.Minute()

	for _, p := range periods {
		// A period with no close point means open around the clock. The
		// provider encodes 24/7 as one such period on day 0, so the day
		// it hangs off is irrelevant.
		if p.CloseTime < 0 {
			return true
		}

		if p.CloseTime > p.OpenTime {
			if p.Day == day && minutes >= p.OpenTime && minutes < p.CloseTime {
				return true
			}
			continue
		}

		// Closing time past midnight: the span covers the tail of the
		// period's day and the head of the next one
		if p.Day == day && minutes >= p.OpenTime {
			return true
		}
		if (p.Day+1)%7 == day && minutes < p.CloseTime {
			return true
		}
	}

	return false
}
