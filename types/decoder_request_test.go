package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecoderRequestValidate(t *testing.T) {
	valid := DecoderRequest{
		Kind:      DecoderKindH264,
		VendorTag: "Xilinx",
		CustomParams: Parameters{
			{Key: "width", Value: "1280"},
			{Key: "height", Value: "720"},
		},
	}
	require.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*DecoderRequest){
		"undefined_kind":    func(r *DecoderRequest) { r.Kind = DecoderKindUndefined },
		"empty_vendor":      func(r *DecoderRequest) { r.VendorTag = "" },
		"long_vendor":       func(r *DecoderRequest) { r.VendorTag = strings.Repeat("x", MaxVendorTagLength) },
		"binary_vendor":     func(r *DecoderRequest) { r.VendorTag = "Xil\x00inx" },
		"empty_param_key":   func(r *DecoderRequest) { r.CustomParams = append(r.CustomParams, Parameter{Value: "1"}) },
		"duplicate_param":   func(r *DecoderRequest) { r.CustomParams = append(r.CustomParams, Parameter{Key: "width", Value: "1"}) },
	} {
		t.Run(name, func(t *testing.T) {
			req := valid.Clone()
			mutate(&req)
			err := req.Validate()
			require.ErrorAs(t, err, &ErrInvalidRequest{})
		})
	}

	for _, kind := range []DecoderKind{EndOfDecoderKind, DecoderKind(99), DecoderKind(-1)} {
		req := valid.Clone()
		req.Kind = kind
		err := req.Validate()
		require.ErrorAs(t, err, &ErrUnknownDecoderKind{}, kind)
		require.False(t, errors.As(err, &ErrInvalidRequest{}), kind)
	}

	longestValid := valid.Clone()
	longestValid.VendorTag = strings.Repeat("x", MaxVendorTagLength-1)
	require.NoError(t, longestValid.Validate())
}

func TestDecoderRequestCloneIsIndependent(t *testing.T) {
	orig := DecoderRequest{
		Kind:         DecoderKindH264,
		VendorTag:    "Xilinx",
		CustomParams: Parameters{{Key: "a", Value: "0"}},
	}
	cloned := orig.Clone()
	cloned.CustomParams[0].Value = "1"
	require.Equal(t, "0", orig.CustomParams[0].Value)
}

func TestParametersDeduplicate(t *testing.T) {
	require.Equal(
		t,
		Parameters{
			{Key: "b", Value: "0"},
			{Key: "a", Value: "1"},
		},
		Parameters{
			{Key: "a", Value: "0"},
			{Key: "b", Value: "0"},
			{Key: "a", Value: "1"},
		}.Deduplicate(),
	)
}

func TestParametersGetters(t *testing.T) {
	params := Parameters{
		{Key: "width", Value: "640"},
		{Key: "latency", Value: "5ms"},
		{Key: "broken", Value: "x"},
	}

	v, ok, err := params.GetInt("width")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 640, v)

	_, ok, err = params.GetInt("height")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = params.GetInt("broken")
	require.Error(t, err)
	require.True(t, ok)

	d, ok, err := params.GetDuration("latency")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "5ms", d.String())
}

func TestDecoderKindFromString(t *testing.T) {
	for _, k := range DecoderKinds() {
		parsed, err := DecoderKindFromString(strings.ToUpper(k.String()))
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}

	k, err := DecoderKindFromString("h265")
	require.NoError(t, err)
	require.Equal(t, DecoderKindHEVC, k)

	_, err = DecoderKindFromString("mpeg2")
	require.Error(t, err)
}

func TestIsSteadyState(t *testing.T) {
	require.True(t, IsSteadyState(ErrWouldBlock{}))
	require.True(t, IsSteadyState(ErrNoFrameAvailable{}))
	require.False(t, IsSteadyState(ErrEndOfStream{}))
	require.False(t, IsSteadyState(ErrCapacityExhausted{Kind: DecoderKindH264, Total: 1}))
}
