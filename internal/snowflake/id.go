// Package snowflake provides a Mastodon compatible Snowflake ID generator.
package snowflake

import (
	"math/rand"
	"strconv"
	"time"
)

// ID is a 64 bit, time ordered, identifier.
type ID uint64

// Now returns a new ID for the current time.
func Now() ID {
	return TimeToID(time.Now())
}

// TimeToID converts a time.Time to a Snowflake ID.
func TimeToID(ts time.Time) ID {
	// 48 bits for time in milliseconds.
	// 0 bits for worker ID.
	// 0 bits for sequence.
	// 16 bits for random.
	return ID(uint64(ts.UnixNano()/int64(time.Millisecond))<<16 | uint64(rand.Intn(1<<16)))
}

// ToTime converts a Snowflake ID back to the time.Time it was created at.
func (id ID) ToTime() time.Time {
	return time.Unix(0, int64(id>>16)*1e6)
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
