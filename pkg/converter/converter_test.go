package converter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"song.crlmod", FormatModule},
		{"song.asm", FormatModule},
		{"song.mid", FormatMIDI},
		{"song.midi", FormatMIDI},
		{"kick.wav", FormatWAV},
		{"song.sav", FormatUnknown},
		{"song", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result := DetectFormat(tt.filename)
			if result != tt.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input, ext, want string
	}{
		{"song.sav", ModuleExt, "song.crlmod"},
		{"dir/music.bin", ModuleExt, "dir/music.crlmod"},
		{"game.v1.gb", ".mid", "game.v1.mid"},
		{"noext", ModuleExt, "noext.crlmod"},
	}
	for _, tt := range tests {
		if got := DefaultOutputPath(tt.input, tt.ext); got != tt.want {
			t.Errorf("DefaultOutputPath(%q, %q) = %q, want %q", tt.input, tt.ext, got, tt.want)
		}
	}
}

func TestConverterNew(t *testing.T) {
	conv := New()
	if conv == nil {
		t.Fatal("New() returned nil")
	}
	if conv.Renderer() == nil {
		t.Fatal("Renderer() returned nil")
	}

	r := NewRenderer()
	r.Header = "; custom"
	conv.SetRenderer(r)
	if conv.Renderer() != r {
		t.Error("Renderer() did not return the renderer set")
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, BankSize)
	// pattern 0 row 0 triggers sample 4, which has no sample bank
	data[PatternDataOffset+4] = SampleTriggerMarker
	data[PatternDataOffset+5] = 4
	path := writeFile(t, dir, "song.sav", data)

	res, err := New().ConvertFile(Source{Sav: path}, "")
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "song.crlmod"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(out) != string(res.Output) {
		t.Error("written output differs from result")
	}
	if !strings.Contains(string(out), "\tdn ___, __, ___, __, SMP, $4, __, __, __\n") {
		t.Error("sample trigger row not rendered")
	}

	if len(res.Warnings) != 1 || res.Warnings[0].Kind != WarnNoSampleBank || res.Warnings[0].Sample != 4 {
		t.Errorf("warnings = %+v, want one missing bank warning for sample 4", res.Warnings)
	}
}

func TestConvertFileNoSourceWritesNothing(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.crlmod")

	_, err := New().ConvertFile(Source{}, output)
	if !errors.Is(err, ErrNoMusicSource) {
		t.Fatalf("ConvertFile() error = %v, want ErrNoMusicSource", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no output file should be written on a fatal error")
	}

	empty := writeFile(t, dir, "empty.bin", nil)
	if _, err := New().ConvertFile(Source{MusicPath: empty}, output); !errors.Is(err, ErrNoMusicSource) {
		t.Fatalf("ConvertFile(empty bin) error = %v, want ErrNoMusicSource", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("an empty music bank should not produce an output file")
	}
}

func TestConvertSav(t *testing.T) {
	res, err := New().ConvertSav(make([]byte, 2*BankSize))
	if err != nil {
		t.Fatalf("ConvertSav() error = %v", err)
	}
	if !res.Song.HasSampleBank {
		t.Error("combined image should carry a sample bank")
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", res.Warnings)
	}

	if _, err := New().ConvertSav(nil); !errors.Is(err, ErrNoMusicSource) {
		t.Errorf("ConvertSav(nil) error = %v, want ErrNoMusicSource", err)
	}
}

func TestConverterWriteMIDIFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	song := &Song{Orders: []OrderEntry{{Kind: OrderPattern, Pattern: 0}}}
	if err := New().WriteMIDIFile(song, path); err != nil {
		t.Fatalf("WriteMIDIFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "MThd") {
		t.Error("written file is not a MIDI file")
	}

	missing := filepath.Join(t.TempDir(), "out.mid")
	if err := New().WriteMIDIFile(nil, missing); err == nil {
		t.Error("WriteMIDIFile(nil) should fail")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("no file should be written for a nil song")
	}
}

func TestDecodeNilBanks(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrNoMusicSource) {
		t.Errorf("Decode(nil) error = %v, want ErrNoMusicSource", err)
	}
}

func TestGetSupportedConversions(t *testing.T) {
	conversions := GetSupportedConversions()

	expected := []string{
		"sav -> crlmod",
		"bin -> crlmod",
		"rom -> crlmod",
		"sav -> midi",
		"sav -> wav",
	}
	if len(conversions) != len(expected) {
		t.Fatalf("GetSupportedConversions() returned %d conversions, want %d", len(conversions), len(expected))
	}
	for i, exp := range expected {
		if conversions[i] != exp {
			t.Errorf("conversions[%d] = %q, want %q", i, conversions[i], exp)
		}
	}
}
