package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ModuleExt is the extension of rendered music modules
const ModuleExt = ".crlmod"

// Format represents an output format
type Format string

const (
	FormatModule  Format = "crlmod"
	FormatMIDI    Format = "midi"
	FormatWAV     Format = "wav"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the output format from a file extension
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ModuleExt, ".asm", ".inc":
		return FormatModule
	case ".mid", ".midi":
		return FormatMIDI
	case ".wav":
		return FormatWAV
	default:
		return FormatUnknown
	}
}

// DefaultOutputPath replaces the extension of input with ext
func DefaultOutputPath(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

// Result is a completed decode and render
type Result struct {
	Song     *Song
	Output   []byte
	Warnings []Warning
}

// Converter runs the load, decode and render pipeline
type Converter struct {
	renderer *Renderer
	midi     *MIDIExporter
}

// New creates a Converter with default renderer settings
func New() *Converter {
	return &Converter{
		renderer: NewRenderer(),
		midi:     NewMIDIExporter(),
	}
}

// Renderer returns the renderer used for module output
func (c *Converter) Renderer() *Renderer {
	return c.renderer
}

// SetRenderer replaces the renderer
func (c *Converter) SetRenderer(r *Renderer) {
	c.renderer = r
}

// Load resolves a Source and decodes it
func (c *Converter) Load(src Source) (*Song, error) {
	banks, err := LoadBanks(src)
	if err != nil {
		return nil, err
	}
	return Decode(banks)
}

// ConvertBanks decodes banks and renders module source
func (c *Converter) ConvertBanks(banks *Banks) (*Result, error) {
	song, err := Decode(banks)
	if err != nil {
		return nil, err
	}
	return &Result{
		Song:     song,
		Output:   c.renderer.Render(song),
		Warnings: song.Warnings,
	}, nil
}

// ConvertSav decodes a combined savefile image held in memory
func (c *Converter) ConvertSav(data []byte) (*Result, error) {
	banks, err := SplitSav(data)
	if err != nil {
		return nil, err
	}
	return c.ConvertBanks(banks)
}

// SongToMIDI exports a decoded song as a Standard MIDI File
func (c *Converter) SongToMIDI(song *Song) ([]byte, error) {
	return c.midi.GenerateMIDI(song)
}

// WriteMIDIFile exports a decoded song to a Standard MIDI File on disk
func (c *Converter) WriteMIDIFile(song *Song, filename string) error {
	return c.midi.WriteMIDIFile(song, filename)
}

// ConvertFile decodes src and writes module source to outputPath.
// Nothing is written if loading fails.
func (c *Converter) ConvertFile(src Source, outputPath string) (*Result, error) {
	banks, err := LoadBanks(src)
	if err != nil {
		return nil, err
	}
	res, err := c.ConvertBanks(banks)
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}
	if outputPath == "" {
		outputPath = DefaultOutputPath(src.InputName(), ModuleExt)
	}
	if err := os.WriteFile(outputPath, res.Output, 0644); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}
	return res, nil
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"sav -> crlmod",
		"bin -> crlmod",
		"rom -> crlmod",
		"sav -> midi",
		"sav -> wav",
	}
}
