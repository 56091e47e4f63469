package recur

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTripID returns a collision-resistant opaque identifier for a single
// trip instance: a time component plus a random suffix, uppercased. The only
// contract is "URL/document-key safe"; callers must not parse it.
func NewTripID() string {
	return strings.ToUpper(fmt.Sprintf("T%s-%s", timeComponent(), randomSuffix()))
}

// NewRecurrenceID returns the shared identifier for a recurring series.
// Alongside the time and random components it embeds a short hash of the
// series' defining fields, so two near-identical series created in the same
// millisecond still differ by their random suffixes while remaining
// recognizably distinct by fingerprint.
func NewRecurrenceID(origin, destination, departureTime string, start time.Time) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%s|%s", origin, destination, departureTime, FormatISODate(start))
	return strings.ToUpper(fmt.Sprintf("R%s-%s-%s",
		timeComponent(),
		strconv.FormatUint(uint64(h.Sum32()), 36),
		randomSuffix(),
	))
}

func timeComponent() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36)
}

// randomSuffix takes the first group of a v4 UUID: 8 hex chars, 32 bits of
// randomness, enough to separate IDs minted in the same millisecond.
func randomSuffix() string {
	return uuid.NewString()[:8]
}
