package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRecordID returns an id of the form prefix_unixMillis_random, where
// random is eight hex characters.
func NewRecordID(prefix string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), random)
}
