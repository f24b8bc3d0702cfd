package types

import (
	"encoding/json"
	"fmt"
)

type SessionState int

const (
	UndefinedSessionState = SessionState(iota)
	SessionStateCreated
	SessionStateActive
	SessionStateDraining
	SessionStateClosed
	EndOfSessionState
)

func (s SessionState) String() string {
	switch s {
	case UndefinedSessionState:
		return "<undefined>"
	case SessionStateCreated:
		return "created"
	case SessionStateActive:
		return "active"
	case SessionStateDraining:
		return "draining"
	case SessionStateClosed:
		return "closed"
	}
	return fmt.Sprintf("<unexpected_%d>", int(s))
}

func (s SessionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
