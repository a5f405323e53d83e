package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- μ-law codec tests ---

func TestDecodeMulaw_KnownBytes(t *testing.T) {
	got := DecodeMulaw([]byte{0xFF, 0x00, 0x7F, 0x80})
	assert.Equal(t, []int16{0, -32124, 0, 32124}, got)
}

func TestEncodeMulaw_Silence(t *testing.T) {
	got := EncodeMulaw([]int16{0, 0, 0})
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, got)
}

func TestMulaw_RoundTripPreservesSign(t *testing.T) {
	samples := []int16{-30000, -1000, -100, 100, 1000, 30000}
	decoded := DecodeMulaw(EncodeMulaw(samples))
	require.Len(t, decoded, len(samples))
	for i, s := range samples {
		if s < 0 {
			assert.Less(t, decoded[i], int16(0), "sample %d", i)
		} else {
			assert.Greater(t, decoded[i], int16(0), "sample %d", i)
		}
	}
}

func TestMulaw_RoundTripWithinCompandingError(t *testing.T) {
	// μ-law is lossy but the second pass through the codec is stable:
	// decode(encode(x)) is a fixed point.
	samples := []int16{-32124, -12345, -512, 0, 512, 12345, 32124}
	once := DecodeMulaw(EncodeMulaw(samples))
	twice := DecodeMulaw(EncodeMulaw(once))
	assert.Equal(t, once, twice)
}

func TestEncodeMulaw_ClipsExtremes(t *testing.T) {
	got := DecodeMulaw(EncodeMulaw([]int16{32767, -32768}))
	assert.Equal(t, []int16{32124, -32124}, got)
}

func TestDecodeMulaw_Empty(t *testing.T) {
	assert.Empty(t, DecodeMulaw(nil))
}

// --- sample rate conversion tests ---

func TestUpsample2x_DuplicatesSamples(t *testing.T) {
	got := Upsample2x([]int16{10, -10})
	assert.Equal(t, []int16{10, 10, -10, -10}, got)
}

func TestUpsample2x_Empty(t *testing.T) {
	assert.Empty(t, Upsample2x(nil))
}

func TestDecimateBy3_KeepsEveryThird(t *testing.T) {
	got := DecimateBy3([]int16{1, 2, 3, 4, 5, 6})
	assert.Equal(t, []int16{1, 4}, got)
}

func TestDecimateBy3_ShortInput(t *testing.T) {
	assert.Equal(t, []int16{7}, DecimateBy3([]int16{7, 8}))
	assert.Empty(t, DecimateBy3(nil))
}

// --- PCM byte conversion tests ---

func TestPCMToBytes_LittleEndian(t *testing.T) {
	got := PCMToBytes([]int16{0x0102, -2})
	assert.Equal(t, []byte{0x02, 0x01, 0xFE, 0xFF}, got)
}

func TestPCMFromBytes_RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768}
	assert.Equal(t, samples, PCMFromBytes(PCMToBytes(samples)))
}

func TestPCMFromBytes_OddLength(t *testing.T) {
	assert.Nil(t, PCMFromBytes([]byte{0x01}))
}
