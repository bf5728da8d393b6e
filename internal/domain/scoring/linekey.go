package scoring

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// LineKey derives a stable identifier for a practice line from its normalized
// text, so "Hello, World!" and "hello world" share a key.
func LineKey(target string) string {
	return "line-" + strconv.FormatUint(xxhash.Sum64String(Normalize(target)), 16)
}
