package api

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/CDLUC3/rslv-go/internal/model"
)

// computeETag derives a weak ETag for an introspection response from the
// matched definition's uniq key and the catalog's updated timestamp, so a
// client's cached copy invalidates whenever any definition in the catalog
// changes (updated is catalog-wide, not per-definition).
func computeETag(def *model.PidDefinition, meta *model.CatalogMetadata) string {
	seed := fmt.Sprintf("%s|%d", def.Uniq, meta.UpdatedUnixNs)
	sum := xxh3.HashString(seed)
	return `W/"` + hex.EncodeToString(uint64ToBytes(sum)) + `"`
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
