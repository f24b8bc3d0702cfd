package types

import (
	"fmt"
)

// MaxVendorTagLength is the size of the vendor string buffer of the
// hardware interface, including the terminating NUL.
const MaxVendorTagLength = 256

// DecoderRequest is the configuration a client supplies when creating a
// decoder session.
type DecoderRequest struct {
	Kind         DecoderKind `json:"kind"`
	VendorTag    string      `json:"vendor_tag"`
	IntraOnly    bool        `json:"intra_only,omitempty"`
	CustomParams Parameters  `json:"custom_params,omitempty"`
}

func (r DecoderRequest) String() string {
	return fmt.Sprintf("%s@%s", r.Kind, r.VendorTag)
}

func (r DecoderRequest) Clone() DecoderRequest {
	r.CustomParams = r.CustomParams.Clone()
	return r
}

// Validate returns ErrInvalidRequest if the request is malformed. A kind
// outside of the known ones is reported as ErrUnknownDecoderKind, but
// whether a known kind is configured on a device is not checked here.
func (r DecoderRequest) Validate() error {
	if r.Kind == DecoderKindUndefined {
		return ErrInvalidRequest{Reason: "the decoder kind is not set"}
	}
	if !r.Kind.IsValid() {
		return ErrUnknownDecoderKind{Kind: r.Kind}
	}
	if err := ValidateVendorTag(r.VendorTag); err != nil {
		return ErrInvalidRequest{Reason: err.Error()}
	}
	if err := r.CustomParams.Validate(); err != nil {
		return ErrInvalidRequest{Reason: err.Error()}
	}
	return nil
}

func ValidateVendorTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("the vendor tag is empty")
	}
	if len(tag) > MaxVendorTagLength-1 {
		return fmt.Errorf("the vendor tag is %d bytes long, the limit is %d", len(tag), MaxVendorTagLength-1)
	}
	for idx := 0; idx < len(tag); idx++ {
		c := tag[idx]
		if c < 0x20 || c > 0x7e {
			return fmt.Errorf("the vendor tag contains a non-printable byte 0x%02X at position %d", c, idx)
		}
	}
	return nil
}
