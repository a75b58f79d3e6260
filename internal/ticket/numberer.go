// Package ticket generates collision-resistant, human-readable ticket
// numbers with no persisted counter and no cross-process coordination.
package ticket

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Prefixes for the supported categories.
const (
	PrefixIssue       = "ISS"
	PrefixRequirement = "REQ"
)

// Generate returns an id of the form <PREFIX>-<YYYYMMDD>-<BASE36>, where the
// base36 part encodes (HH*10000 + MM*100 + SS)*1000 + R with R a uniformly
// random 0-999. Two calls within the same second collide only if they also
// draw the same R. Safe for concurrent use; never fails.
func Generate(prefix string) string {
	return generateAt(prefix, time.Now(), rand.IntN(1000))
}

func generateAt(prefix string, now time.Time, random int) string {
	timeValue := now.Hour()*10000 + now.Minute()*100 + now.Second()
	combined := int64(timeValue)*1000 + int64(random)
	encoded := strings.ToUpper(strconv.FormatInt(combined, 36))
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), encoded)
}
