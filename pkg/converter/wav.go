package converter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SampleRate is the playback rate samples are exported at
const SampleRate = 8192

// UnpackSample expands packed 4-bit PCM (high nibble first) into unsigned 8-bit PCM
func UnpackSample(data []byte) []int {
	out := make([]int, 0, len(data)*2)
	for _, b := range data {
		out = append(out, nibbleToPCM(b>>4), nibbleToPCM(b&0x0F))
	}
	return out
}

func nibbleToPCM(n uint8) int {
	return int(n) * 0x11
}

// EncodeSampleWAV writes one sample as a mono 8-bit WAV stream
func EncodeSampleWAV(w io.WriteSeeker, s *Sample) error {
	if s == nil {
		return errors.New("nil sample")
	}
	enc := wav.NewEncoder(w, SampleRate, 8, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  SampleRate,
		},
		Data:           UnpackSample(s.Data),
		SourceBitDepth: 8,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode sample %d: %w", s.Index, err)
	}
	return enc.Close()
}

// SampleFileName derives the WAV file name for sample slot idx
func SampleFileName(base string, idx int) string {
	return fmt.Sprintf("%s_sample%d.wav", strings.TrimSuffix(base, filepath.Ext(base)), idx)
}

// WriteSampleWAVs writes every defined sample next to base and returns the paths written
func WriteSampleWAVs(song *Song, base string) ([]string, error) {
	var written []string
	for i, s := range song.Samples {
		if s == nil {
			continue
		}
		name := SampleFileName(base, i)
		if err := writeSampleFile(name, s); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

func writeSampleFile(name string, s *Sample) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := EncodeSampleWAV(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
