package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// TotalSamples is the length of the sequence the chunks concatenate to.
func TotalSamples(chunks [][]int16) int {
	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	return n
}

// Concat joins chunks in order into one sample sequence.
func Concat(chunks [][]int16) []int16 {
	out := make([]int16, 0, TotalSamples(chunks))
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
