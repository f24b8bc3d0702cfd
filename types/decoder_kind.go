// decoder_kind.go defines the DecoderKind enum and its methods.

// Package types provides common types and interfaces used throughout the hwdec project.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecoderKind identifies a specific hardware decoder algorithm.
type DecoderKind int

const (
	DecoderKindUndefined = DecoderKind(iota)

	// DecoderKindH264 keeps the value of XMA_H264_DECODER_TYPE.
	DecoderKindH264
	DecoderKindHEVC
	DecoderKindVP9
	DecoderKindAV1

	EndOfDecoderKind
)

func DecoderKinds() []DecoderKind {
	var result []DecoderKind
	for k := DecoderKindUndefined + 1; k < EndOfDecoderKind; k++ {
		result = append(result, k)
	}
	return result
}

func (k DecoderKind) IsValid() bool {
	return k > DecoderKindUndefined && k < EndOfDecoderKind
}

func (k DecoderKind) String() string {
	switch k {
	case DecoderKindUndefined:
		return "<undefined>"
	case DecoderKindH264:
		return "h264"
	case DecoderKindHEVC:
		return "hevc"
	case DecoderKindVP9:
		return "vp9"
	case DecoderKindAV1:
		return "av1"
	}
	return fmt.Sprintf("unknown_%d", int(k))
}

func DecoderKindFromString(s string) (DecoderKind, error) {
	s = strings.Trim(strings.ToLower(s), " \"\n\r\t")
	switch s {
	case "h265":
		return DecoderKindHEVC, nil
	case "avc":
		return DecoderKindH264, nil
	}
	for _, k := range DecoderKinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return DecoderKindUndefined, fmt.Errorf("unknown decoder kind: '%s'", s)
}

func (k DecoderKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *DecoderKind) UnmarshalText(b []byte) error {
	v, err := DecoderKindFromString(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k DecoderKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *DecoderKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("unable to unmarshal DecoderKind from JSON '%s': %w", b, err)
	}
	return k.UnmarshalText([]byte(s))
}
