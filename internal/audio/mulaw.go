// Package audio converts between the telephony wire format (8 kHz G.711
// μ-law) and the engine's linear PCM formats (16 kHz in, 24 kHz out).
//
// All functions are pure: one output allocation, no shared state, safe to
// call concurrently across sessions. Conversions favor latency over
// fidelity; the link is G.711-quality either way.
package audio

const (
	mulawBias = 0x84
	mulawClip = 32635
)

// DecodeMulaw expands 8-bit μ-law samples to 16-bit linear PCM.
// An empty input yields an empty output.
func DecodeMulaw(in []byte) []int16 {
	out := make([]int16, len(in))
	for i, b := range in {
		u := ^b
		exp := (u >> 4) & 0x07
		mant := u & 0x0F
		magnitude := (int32(mant)<<3 + mulawBias) << exp
		if u&0x80 != 0 {
			out[i] = int16(mulawBias - magnitude)
		} else {
			out[i] = int16(magnitude - mulawBias)
		}
	}
	return out
}

// EncodeMulaw compands 16-bit linear PCM down to 8-bit μ-law. Samples are
// clipped to ±32635 before companding to avoid overflow wraparound.
func EncodeMulaw(in []int16) []byte {
	out := make([]byte, len(in))
	for i, s := range in {
		out[i] = encodeSample(s)
	}
	return out
}

func encodeSample(s int16) byte {
	var sign byte
	v := int32(s)
	if v < 0 {
		v = -v
		sign = 0x80
	}
	if v > mulawClip {
		v = mulawClip
	}
	v += mulawBias

	exp := byte(7)
	for mask := int32(0x4000); v&mask == 0 && exp > 0; mask >>= 1 {
		exp--
	}
	mant := byte(v>>(exp+3)) & 0x0F
	return ^(sign | exp<<4 | mant)
}
