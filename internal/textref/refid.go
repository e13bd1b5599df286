package textref

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// NewRefID allocates a reference ID: a positive 63-bit integer drawn from a
// random UUID. Allocation is uncoordinated across concurrent callers;
// uniqueness is probabilistic here and enforced for real by the translation
// store's (reference_id, language_code) constraint.
func NewRefID() int64 {
	for {
		id := uuid.New()
		value := int64(binary.BigEndian.Uint64(id[:8]) &^ (1 << 63))
		if value > 0 {
			return value
		}
	}
}
