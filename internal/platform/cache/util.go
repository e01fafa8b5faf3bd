package cache

import (
	"time"
)

// TimeUntilNextBucket は now から次のバケット境界（Unix時刻で width の倍数）までの期間を返します。
// width が0以下の場合は0を返します。
func TimeUntilNextBucket(now time.Time, width time.Duration) time.Duration {
	if width <= 0 {
		return 0
	}
	rem := time.Duration(now.UnixNano() % int64(width))
	if rem < 0 {
		rem += width
	}
	return width - rem
}
