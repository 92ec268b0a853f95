package encoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const WAVHeaderSize = 44

var (
	ErrPayloadTooLarge = errors.New("wav: payload exceeds 32-bit size fields")
	ErrInvalidWAV      = errors.New("wav: invalid header")
)

type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// WAVInfo describes a decoded container.
type WAVInfo struct {
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	DataSize      uint32
}

// Duration in seconds of the PCM payload.
func (i WAVInfo) Duration() float64 {
	bytesPerSec := float64(i.SampleRate) * float64(i.Channels) * float64(i.BitsPerSample/8)
	if bytesPerSec == 0 {
		return 0
	}
	return float64(i.DataSize) / bytesPerSec
}

// checkDataSize reports whether samples 16-bit values still fit the RIFF
// and data size fields.
func checkDataSize(samples uint64) error {
	if samples > (math.MaxUint32-36)/2 {
		return fmt.Errorf("%w: %d samples", ErrPayloadTooLarge, samples)
	}
	return nil
}

// EncodeWAV writes chunks, in order, as a mono 16-bit PCM WAV.
func EncodeWAV(chunks [][]int16, sampleRate uint32) ([]byte, error) {
	total := uint64(TotalSamples(chunks))
	if err := checkDataSize(total); err != nil {
		return nil, err
	}
	dataSize := total * 2

	h := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + uint32(dataSize),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   Channels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * Channels * BitsPerSample / 8,
		BlockAlign:    Channels * BitsPerSample / 8,
		BitsPerSample: BitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(dataSize),
	}

	var buf bytes.Buffer
	buf.Grow(WAVHeaderSize + int(dataSize))
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("writing wav header: %w", err)
	}
	for _, c := range chunks {
		if err := binary.Write(&buf, binary.LittleEndian, c); err != nil {
			return nil, fmt.Errorf("writing wav samples: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeWAV parses a canonical 44-byte-header PCM WAV and returns its samples.
func DecodeWAV(data []byte) (WAVInfo, []int16, error) {
	if len(data) < WAVHeaderSize {
		return WAVInfo{}, nil, fmt.Errorf("%w: %d bytes", ErrInvalidWAV, len(data))
	}
	var h wavHeader
	if err := binary.Read(bytes.NewReader(data[:WAVHeaderSize]), binary.LittleEndian, &h); err != nil {
		return WAVInfo{}, nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if string(h.ChunkID[:]) != "RIFF" || string(h.Format[:]) != "WAVE" {
		return WAVInfo{}, nil, fmt.Errorf("%w: not a RIFF/WAVE file", ErrInvalidWAV)
	}
	if h.AudioFormat != 1 || h.BitsPerSample != 16 {
		return WAVInfo{}, nil, fmt.Errorf("%w: format %d, %d bits", ErrInvalidWAV, h.AudioFormat, h.BitsPerSample)
	}
	if string(h.Subchunk2ID[:]) != "data" {
		return WAVInfo{}, nil, fmt.Errorf("%w: missing data chunk", ErrInvalidWAV)
	}
	payload := data[WAVHeaderSize:]
	if uint64(h.Subchunk2Size) > uint64(len(payload)) {
		return WAVInfo{}, nil, fmt.Errorf("%w: data size %d exceeds payload %d", ErrInvalidWAV, h.Subchunk2Size, len(payload))
	}
	payload = payload[:h.Subchunk2Size]

	samples := make([]int16, len(payload)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(payload[i*2:]))
	}
	info := WAVInfo{
		Channels:      h.NumChannels,
		SampleRate:    h.SampleRate,
		BitsPerSample: h.BitsPerSample,
		DataSize:      h.Subchunk2Size,
	}
	return info, samples, nil
}
