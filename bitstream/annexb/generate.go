package annexb

// Generate produces a syntactically plausible Annex-B stream of the given
// number of pictures: parameter sets and a key frame every gopSize
// pictures, one slice per picture. The slice payloads carry no real
// picture data; they only exercise the access-unit boundary detection.
func Generate(codec Codec, frames int, gopSize int) []byte {
	if gopSize <= 0 {
		gopSize = 1
	}
	var out []byte
	appendNAL := func(nal ...byte) {
		out = append(out, 0, 0, 0, 1)
		out = append(out, nal...)
	}
	for i := 0; i < frames; i++ {
		key := i%gopSize == 0
		payload := make([]byte, 16)
		for j := range payload {
			payload[j] = byte(1 + (i+j)%254)
		}
		switch codec {
		case CodecH264:
			if key {
				appendNAL(0x67, 0x42, 0xc0, 0x1f) // SPS
				appendNAL(0x68, 0xce, 0x3c, 0x80) // PPS
				appendNAL(append([]byte{0x65, 0x88}, payload...)...)
			} else {
				appendNAL(append([]byte{0x41, 0x9a}, payload...)...)
			}
		case CodecHEVC:
			if key {
				appendNAL(0x40, 0x01, 0x0c, 0x01) // VPS
				appendNAL(0x42, 0x01, 0x01, 0x01) // SPS
				appendNAL(0x44, 0x01, 0xc1, 0x72) // PPS
				appendNAL(append([]byte{0x26, 0x01, 0xaf}, payload...)...)
			} else {
				appendNAL(append([]byte{0x02, 0x01, 0xd0}, payload...)...)
			}
		default:
			panic("unsupported codec " + codec.String())
		}
	}
	return out
}
