package weather

// ReduceDaily collapses a 3-hour forecast series into one representative
// sample per distinct local calendar date. The FIRST sample seen for a date
// is kept and key order follows first appearance in the series, so the digest
// is deterministic for a given series. No merging or averaging happens; this
// is a representative pick, not a true daily aggregate.
//
// offsetSec is the location's UTC offset, so "calendar date" means the date a
// viewer at that location would see.
func ReduceDaily(series ForecastSeries, offsetSec int) DailyDigest {
	if len(series) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(series))
	digest := make(DailyDigest, 0, 6)

	for _, sample := range series {
		key := FormatDate(sample.Epoch, offsetSec)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		digest = append(digest, sample)
	}

	return digest
}
