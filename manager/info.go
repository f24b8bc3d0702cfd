package manager

import (
	"context"

	"github.com/xaionaro-go/hwdec/session"
	"github.com/xaionaro-go/hwdec/types"
	"github.com/xaionaro-go/xsync"
)

type SessionInfo struct {
	Handle     Handle                 `json:"handle"`
	ID         string                 `json:"id"`
	Kind       types.DecoderKind      `json:"kind"`
	VendorTag  string                 `json:"vendor_tag"`
	IntraOnly  bool                   `json:"intra_only,omitempty"`
	State      types.SessionState     `json:"state"`
	Properties *types.FrameProperties `json:"properties,omitempty"`
	Stats      session.StatsSnapshot  `json:"stats"`
}

func newSessionInfo(
	ctx context.Context,
	h Handle,
	sess *session.Session,
) SessionInfo {
	req := sess.Request()
	info := SessionInfo{
		Handle:    h,
		ID:        sess.ID(),
		Kind:      req.Kind,
		VendorTag: req.VendorTag,
		IntraOnly: req.IntraOnly,
		State:     sess.State(),
		Stats:     sess.Stats(),
	}
	if props, err := sess.GetProperties(ctx); err == nil {
		info.Properties = &props
	}
	return info
}

// Sessions lists the live sessions ordered by their slots.
func (m *Manager) Sessions(ctx context.Context) []SessionInfo {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &m.locker, func() []SessionInfo {
		var result []SessionInfo
		for idx := range m.slots {
			s := &m.slots[idx]
			if s.session == nil {
				continue
			}
			h := Handle{index: uint32(idx), generation: s.generation}
			result = append(result, newSessionInfo(ctx, h, s.session))
		}
		return result
	})
}

// SessionInfoByID returns the description of the live session with the
// given ID.
func (m *Manager) SessionInfoByID(
	ctx context.Context,
	id string,
) (SessionInfo, bool) {
	for _, info := range m.Sessions(ctx) {
		if info.ID == id {
			return info, true
		}
	}
	return SessionInfo{}, false
}
