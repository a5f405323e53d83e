package audio

import "encoding/binary"

// Upsample2x doubles the sample rate by duplicating every sample. No
// interpolation: the duplicate keeps values exact and adds zero latency,
// which matters more than smoothness on a narrowband call.
func Upsample2x(in []int16) []int16 {
	out := make([]int16, len(in)*2)
	for i, s := range in {
		out[2*i] = s
		out[2*i+1] = s
	}
	return out
}

// DecimateBy3 drops the sample rate to a third by keeping every third
// sample. Nearest-sample decimation, not an anti-aliased resample.
func DecimateBy3(in []int16) []int16 {
	out := make([]int16, 0, (len(in)+2)/3)
	for i := 0; i < len(in); i += 3 {
		out = append(out, in[i])
	}
	return out
}

// PCMToBytes serializes samples as little-endian 16-bit PCM.
func PCMToBytes(in []int16) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// PCMFromBytes parses little-endian 16-bit PCM. Odd-length input is
// malformed and yields an empty result rather than a panic; the caller
// drops the frame and the stream continues.
func PCMFromBytes(in []byte) []int16 {
	if len(in)%2 != 0 {
		return nil
	}
	out := make([]int16, len(in)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(in[2*i:]))
	}
	return out
}
