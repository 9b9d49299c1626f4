// Package converter decodes Carillon editor savefiles into RGBDS macro source
package converter

import "fmt"

// Bank geometry and the Carillon memory map, as offsets into the music bank
const (
	BankSize = 0x4000
	BankBase = 0x4000

	SampleInfoOffset     = 0x46C0 - BankBase
	PanTableOffset       = 0x47C0 - BankBase
	PulseVolLenOffset    = 0x4800 - BankBase
	PulseNoteDutyOffset  = 0x4900 - BankBase
	WaveIndexLenOffset   = 0x4A00 - BankBase
	WaveNoteVolOffset    = 0x4B00 - BankBase
	WaveTableOffset      = 0x4C00 - BankBase
	NoiseVolLenOffset    = 0x4D00 - BankBase
	NoiseFreqOffset      = 0x4E00 - BankBase
	OrderTableOffset     = 0x4F00 - BankBase
	PatternDataOffset    = 0x5000 - BankBase
	PatternSize          = 0x100
	PatternCount         = 0x30
	RowsPerPattern       = 0x20
	RowSize              = 8
	InstrumentsPerKind   = 16
	EnvelopeRows         = 16
	WaveformCount        = 16
	WaveformSize         = 16
	SampleSlots          = 16
	OrderTableLength     = 255
	OrderPatternBias     = 0x50
	PatternNoteBias      = 12
	SampleTriggerMarker  = 0xFF
	EnvelopeEndMarker    = 0xFF
	SampleLengthUnit     = 16
	OrderSentinel        = 0x00
	OrderEndDiscriminant = 0xFF
)

// InstrumentKind selects one of the three instrument tables
type InstrumentKind int

const (
	KindPulse InstrumentKind = iota
	KindWave
	KindNoise
)

// InstrumentKinds lists the kinds in table order
var InstrumentKinds = []InstrumentKind{KindPulse, KindWave, KindNoise}

func (k InstrumentKind) String() string {
	switch k {
	case KindPulse:
		return "PULSE"
	case KindWave:
		return "WAVE"
	case KindNoise:
		return "NOISE"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// RowKind tags an envelope row
type RowKind int

const (
	RowNote RowKind = iota
	RowLoop
	RowEnd
)

// EnvelopeRow is one step of an instrument envelope.
// Loop rows carry the jump target in Target; End rows carry nothing.
type EnvelopeRow struct {
	Kind   RowKind
	Length uint8
	Volume uint8
	Shape  uint8
	Note   int // signed offset, pulse and wave only
	Target uint8
}

// IsMarker reports whether the row is a loop or end marker
func (r EnvelopeRow) IsMarker() bool {
	return r.Kind != RowNote
}

// Instrument holds panning and the envelope of a single instrument slot
type Instrument struct {
	Kind     InstrumentKind
	Index    int
	Panning  uint8
	Envelope [EnvelopeRows]EnvelopeRow
}

// Waveform is a raw 32-sample wave RAM image
type Waveform [WaveformSize]byte

// OrderKind tags an order table entry
type OrderKind int

const (
	OrderPattern OrderKind = iota
	OrderEmpty
	OrderEnd
	OrderLoop
	OrderPad
)

// OrderEntry is one decoded order table slot
type OrderEntry struct {
	Kind    OrderKind
	Pattern int   // OrderPattern only, may be negative for malformed data
	Target  uint8 // OrderLoop only
}

// Channel holds the note/instrument field of a melodic channel
type Channel struct {
	HasNote       bool
	Note          int
	Tied          bool
	HasInstrument bool
	Instrument    uint8
}

// Effect is a row effect command
type Effect struct {
	Command uint8
	Arg     uint8
}

// Row is one pattern row across all four channels
type Row struct {
	Pulse1 Channel
	Pulse2 Channel
	Wave   Channel

	HasSample bool
	Sample    uint8

	HasNoise        bool
	NoiseInstrument uint8

	HasEffect bool
	Effect    Effect
}

// Pattern is a 32 row grid
type Pattern struct {
	Index int
	Rows  [RowsPerPattern]Row
}

// Sample is a defined sample slot
type Sample struct {
	Index   int
	Address int // rebased into the sample bank
	Panning uint8
	Data    []byte
}

// WarningKind classifies non-fatal decode problems
type WarningKind int

const (
	WarnSampleUndefined WarningKind = iota
	WarnNoSampleBank
	WarnSampleTruncated
)

// Warning is a non-fatal decode problem
type Warning struct {
	Kind    WarningKind
	Sample  int
	Message string
}

func (w Warning) String() string {
	return w.Message
}

// Song is the fully decoded savefile
type Song struct {
	Instruments [3][InstrumentsPerKind]Instrument
	Waveforms   [WaveformCount]Waveform
	Orders      []OrderEntry
	Patterns    [PatternCount]Pattern

	// Samples is indexed by slot, nil for undefined slots
	Samples       [SampleSlots]*Sample
	SamplePanning [SampleSlots]uint8
	HasSampleBank bool
	SampleUsage   SampleUsage
	Warnings      []Warning
}

// SampleUsage accumulates sample references seen while decoding patterns
type SampleUsage struct {
	Referenced [SampleSlots]bool
	MaxUsed    int
}

// NewSampleUsage returns an empty usage tracker
func NewSampleUsage() SampleUsage {
	return SampleUsage{MaxUsed: -1}
}

// Mark records a reference to sample slot idx
func (u *SampleUsage) Mark(idx int) {
	if idx < SampleSlots {
		u.Referenced[idx] = true
	}
	if idx > u.MaxUsed {
		u.MaxUsed = idx
	}
}
