package resource

import (
	"context"
	"sort"

	"github.com/xaionaro-go/hwdec/internal"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/types"
	"github.com/xaionaro-go/xsync"
)

type kindLedger struct {
	Total    uint
	Reserved uint
}

// Registry is the process-wide capacity ledger. Reserve and Release are
// the only mutators and are mutually exclusive.
type Registry struct {
	locker      xsync.Mutex
	kinds       map[types.DecoderKind]*kindLedger
	outstanding map[ReservationID]types.DecoderKind
	lastID      ReservationID
}

var _ Manager = (*Registry)(nil)

// NewRegistry creates a ledger with the given number of engines per kind.
// A kind present with zero engines is known but never reservable.
func NewRegistry(
	ctx context.Context,
	capacities map[types.DecoderKind]uint,
) *Registry {
	r := &Registry{
		kinds:       make(map[types.DecoderKind]*kindLedger, len(capacities)),
		outstanding: map[ReservationID]types.DecoderKind{},
	}
	for kind, total := range capacities {
		logger.Debugf(ctx, "capacity of %s: %d", kind, total)
		r.kinds[kind] = &kindLedger{Total: total}
	}
	return r
}

func (r *Registry) String() string {
	return "Registry"
}

func (r *Registry) Reserve(
	ctx context.Context,
	kind types.DecoderKind,
) (_ret Reservation, _err error) {
	logger.Debugf(ctx, "Reserve(%s)", kind)
	defer func() { logger.Debugf(ctx, "/Reserve(%s): %v %v", kind, _ret, _err) }()
	return xsync.DoA2R2(xsync.WithNoLogging(ctx, true), &r.locker, r.reserveLocked, ctx, kind)
}

func (r *Registry) reserveLocked(
	ctx context.Context,
	kind types.DecoderKind,
) (Reservation, error) {
	l, ok := r.kinds[kind]
	if !ok {
		return Reservation{}, types.ErrUnknownDecoderKind{Kind: kind}
	}
	if l.Reserved >= l.Total {
		return Reservation{}, types.ErrCapacityExhausted{Kind: kind, Total: l.Total}
	}
	l.Reserved++
	internal.Assert(ctx, l.Reserved <= l.Total, kind, l.Reserved, l.Total)
	r.lastID++
	res := Reservation{
		ID:   r.lastID,
		Kind: kind,
	}
	r.outstanding[res.ID] = kind
	return res, nil
}

// Release returns the slot of the reservation back to the ledger.
//
// Releasing a reservation that is not outstanding is a bug in the caller;
// it is reported with ErrDoubleRelease and logged at the error level.
func (r *Registry) Release(
	ctx context.Context,
	res Reservation,
) (_err error) {
	logger.Debugf(ctx, "Release(%v)", res)
	defer func() { logger.Debugf(ctx, "/Release(%v): %v", res, _err) }()
	err := xsync.DoA2R1(xsync.WithNoLogging(ctx, true), &r.locker, r.releaseLocked, ctx, res)
	if err != nil {
		logger.Errorf(ctx, "reservation accounting bug: %v", err)
	}
	return err
}

func (r *Registry) releaseLocked(
	ctx context.Context,
	res Reservation,
) error {
	kind, ok := r.outstanding[res.ID]
	if !ok {
		return types.ErrDoubleRelease{ReservationID: uint64(res.ID)}
	}
	if kind != res.Kind {
		logger.Warnf(ctx, "reservation %d was issued for %s, but is released as %s; releasing as %s", res.ID, kind, res.Kind, kind)
	}
	delete(r.outstanding, res.ID)
	l := r.kinds[kind]
	internal.Assert(ctx, l != nil && l.Reserved > 0, kind, res.ID)
	l.Reserved--
	return nil
}

// Kinds returns the configured decoder kinds in ascending order.
func (r *Registry) Kinds() []types.DecoderKind {
	return xsync.DoR1(context.Background(), &r.locker, func() []types.DecoderKind {
		result := make([]types.DecoderKind, 0, len(r.kinds))
		for kind := range r.kinds {
			result = append(result, kind)
		}
		sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
		return result
	})
}

func (r *Registry) Usage(kind types.DecoderKind) (KindUsage, error) {
	return xsync.DoR2(context.Background(), &r.locker, func() (KindUsage, error) {
		l, ok := r.kinds[kind]
		if !ok {
			return KindUsage{}, types.ErrUnknownDecoderKind{Kind: kind}
		}
		return KindUsage{Kind: kind, Reserved: l.Reserved, Total: l.Total}, nil
	})
}

// Snapshot returns the usage of every configured kind in ascending order
// of kinds, taken atomically.
func (r *Registry) Snapshot() []KindUsage {
	return xsync.DoR1(context.Background(), &r.locker, func() []KindUsage {
		result := make([]KindUsage, 0, len(r.kinds))
		for kind, l := range r.kinds {
			result = append(result, KindUsage{Kind: kind, Reserved: l.Reserved, Total: l.Total})
		}
		sort.Slice(result, func(i, j int) bool { return result[i].Kind < result[j].Kind })
		return result
	})
}
