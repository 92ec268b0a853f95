package encoder

import "math"

// QuantizeSample maps a normalized sample to int16. Negative values scale by
// 32768 and the rest by 32767, so -1 and 1 land exactly on the int16 bounds.
func QuantizeSample(s float32) int16 {
	v := float64(s)
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	}
	if v < 0 {
		return int16(math.Round(v * 32768))
	}
	return int16(math.Round(v * 32767))
}

// Quantize converts one frame to a PCM chunk of the same length.
func Quantize(frame []float32) []int16 {
	out := make([]int16, len(frame))
	for i, s := range frame {
		out[i] = QuantizeSample(s)
	}
	return out
}
