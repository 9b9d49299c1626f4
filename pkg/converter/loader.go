package converter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoMusicSource is returned when no input mode yields a music bank
var ErrNoMusicSource = errors.New("no music source loaded")

// Banks holds the raw memory images the decoder works on
type Banks struct {
	Music  []byte
	Sample []byte // nil when no sample data was supplied
}

// HasSampleBank reports whether sample data was supplied
func (b *Banks) HasSampleBank() bool {
	return b.Sample != nil
}

// SourceKind is the input mode of a Source
type SourceKind string

const (
	SourceSav     SourceKind = "sav"
	SourceBin     SourceKind = "bin"
	SourceROM     SourceKind = "rom"
	SourceUnknown SourceKind = "unknown"
)

// Source describes where the banks come from. Exactly one of the
// Sav, MusicPath or ROMPath fields should be set.
type Source struct {
	Sav string

	MusicPath  string
	SamplePath string

	ROMPath      string
	MusicOffset  int64
	SampleOffset int64
	HasSampleOff bool
}

// Kind returns the input mode selected by s
func (s Source) Kind() SourceKind {
	switch {
	case s.Sav != "":
		return SourceSav
	case s.MusicPath != "":
		return SourceBin
	case s.ROMPath != "":
		return SourceROM
	default:
		return SourceUnknown
	}
}

// InputName returns the path output names are derived from
func (s Source) InputName() string {
	switch s.Kind() {
	case SourceSav:
		return s.Sav
	case SourceBin:
		return s.MusicPath
	case SourceROM:
		return s.ROMPath
	default:
		return ""
	}
}

// DetectSourceKind guesses the input mode from a file extension
func DetectSourceKind(filename string) SourceKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".sav":
		return SourceSav
	case ".bin", ".sam":
		return SourceBin
	case ".gb", ".gbc":
		return SourceROM
	default:
		return SourceUnknown
	}
}

// ParseOffset parses a ROM offset written as a Go integer literal (0x4000, 16384, 0o40000)
func ParseOffset(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(s), "$", "0x"), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid offset %q: negative", s)
	}
	return v, nil
}

// LoadBanks resolves a Source into memory banks
func LoadBanks(src Source) (*Banks, error) {
	switch src.Kind() {
	case SourceSav:
		f, err := os.Open(src.Sav)
		if err != nil {
			return nil, fmt.Errorf("failed to open sav file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return ReadSav(f)

	case SourceBin:
		music, err := readBankFile(src.MusicPath, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to read music bank: %w", err)
		}
		if len(music) == 0 {
			return nil, ErrNoMusicSource
		}
		banks := &Banks{Music: padBank(music)}
		if src.SamplePath != "" {
			sample, err := readBankFile(src.SamplePath, 0)
			if err != nil {
				return nil, fmt.Errorf("failed to read sample bank: %w", err)
			}
			banks.Sample = sample
		}
		return banks, nil

	case SourceROM:
		music, err := readBankFile(src.ROMPath, src.MusicOffset)
		if err != nil {
			return nil, fmt.Errorf("failed to read music bank from rom: %w", err)
		}
		if len(music) == 0 {
			return nil, ErrNoMusicSource
		}
		banks := &Banks{Music: padBank(music)}
		if src.HasSampleOff {
			sample, err := readBankFile(src.ROMPath, src.SampleOffset)
			if err != nil {
				return nil, fmt.Errorf("failed to read sample bank from rom: %w", err)
			}
			banks.Sample = sample
		}
		return banks, nil
	}
	return nil, ErrNoMusicSource
}

// ReadSav splits a combined savefile into its music and sample banks.
// A savefile without data past the music bank yields no sample bank.
func ReadSav(r io.Reader) (*Banks, error) {
	music, err := readBank(r)
	if err != nil {
		return nil, err
	}
	if len(music) == 0 {
		return nil, ErrNoMusicSource
	}
	sample, err := readBank(r)
	if err != nil {
		return nil, err
	}
	banks := &Banks{Music: padBank(music)}
	// a music-only image has no sample bank at all, rather than an empty one
	if len(sample) > 0 {
		banks.Sample = sample
	}
	return banks, nil
}

// SplitSav splits an in-memory savefile image into banks
func SplitSav(data []byte) (*Banks, error) {
	if len(data) > BankSize {
		return NewBanks(data[:BankSize], data[BankSize:])
	}
	return NewBanks(data, nil)
}

// NewBanks builds banks from in-memory buffers; sample may be nil
func NewBanks(music, sample []byte) (*Banks, error) {
	if len(music) == 0 {
		return nil, ErrNoMusicSource
	}
	if len(music) > BankSize {
		music = music[:BankSize]
	}
	if len(sample) > BankSize {
		sample = sample[:BankSize]
	}
	return &Banks{Music: padBank(music), Sample: sample}, nil
}

func readBankFile(path string, offset int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return readBank(f)
}

// readBank reads up to one bank, short reads are not an error
func readBank(r io.Reader) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r, BankSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read bank: %w", err)
	}
	return buf, nil
}

// padBank zero-fills a short music bank so fixed offsets stay readable
func padBank(b []byte) []byte {
	if len(b) >= BankSize {
		return b[:BankSize]
	}
	out := make([]byte, BankSize)
	copy(out, b)
	return out
}
