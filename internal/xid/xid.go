// Package xid generates prefixed identifiers of the form
// "<prefix>-<unixnano>-<hex tail>". The timestamp keeps ids roughly
// sortable by creation time; the random tail makes collisions negligible.
package xid

import (
	"crypto/rand"
	"fmt"
	"time"
)

func New(prefix string) string {
	now := time.Now().UnixNano()
	var tail [8]byte
	if _, err := rand.Read(tail[:]); err != nil {
		// Without entropy the timestamp stands alone; callers that
		// persist ids retry on conflict anyway.
		return fmt.Sprintf("%s-%d", prefix, now)
	}
	return fmt.Sprintf("%s-%d-%x", prefix, now, tail)
}
