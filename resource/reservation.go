package resource

import (
	"fmt"

	"github.com/xaionaro-go/hwdec/types"
)

// ReservationID is unique within a Registry and never reused.
type ReservationID uint64

// Reservation is a token for one reserved hardware engine slot.
type Reservation struct {
	ID   ReservationID
	Kind types.DecoderKind
}

func (r Reservation) IsZero() bool {
	return r.ID == 0
}

func (r Reservation) String() string {
	return fmt.Sprintf("Reservation(#%d, %s)", r.ID, r.Kind)
}

type KindUsage struct {
	Kind     types.DecoderKind `json:"kind"`
	Reserved uint              `json:"reserved"`
	Total    uint              `json:"total"`
}

func (u KindUsage) Free() uint {
	return u.Total - u.Reserved
}
