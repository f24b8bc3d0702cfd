// manager.go defines the interfaces of the hardware capacity ledger.

// Package resource tracks the capacity of hardware decode engines per
// decoder kind and issues/revokes reservations of that capacity.
package resource

import (
	"context"

	"github.com/xaionaro-go/hwdec/types"
)

type Manager interface {
	Reserver
	Releaser
}

type Reserver interface {
	Reserve(ctx context.Context, kind types.DecoderKind) (Reservation, error)
}

type Releaser interface {
	Release(ctx context.Context, r Reservation) error
}
