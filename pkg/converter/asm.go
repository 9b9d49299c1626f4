package converter

import (
	"fmt"
	"strings"
)

// NoteTable holds the driver's note constant names, C_0 through B_5
var NoteTable = buildNoteTable()

// EffectTable holds the effect mnemonics indexed by command nibble
var EffectTable = []string{"__", "MO", "SL", "VW", "VR", "UP", "DN", "TM", "BR"}

// envelopeNoteBias moves signed envelope offsets into NoteTable range
const envelopeNoteBias = 36

const defaultHeader = "; Carillon Music data generated with carillon2asm"

func buildNoteTable() []string {
	names := []string{"C_", "C#", "D_", "D#", "E_", "F_", "F#", "G_", "G#", "A_", "A#", "B_"}
	table := make([]string, 0, 6*len(names))
	for octave := 0; octave < 6; octave++ {
		for _, n := range names {
			table = append(table, fmt.Sprintf("%s%d", n, octave))
		}
	}
	return table
}

// NoteName returns the note constant for a table index. Indices outside
// the table render as plain numbers, which the assembler accepts as well.
func NoteName(idx int) string {
	if idx < 0 || idx >= len(NoteTable) {
		return fmt.Sprintf("%d", idx)
	}
	return NoteTable[idx]
}

// EffectName returns the mnemonic for an effect command
func EffectName(cmd uint8) string {
	if int(cmd) >= len(EffectTable) {
		return fmt.Sprintf("$%X", cmd)
	}
	return EffectTable[cmd]
}

// DumpBin renders data as rows of comma separated hex bytes
func DumpBin(data []byte, bytesPerLine int, lineStart string) string {
	var sb strings.Builder
	for i, b := range data {
		col := i % bytesPerLine
		if col == 0 {
			sb.WriteString(lineStart)
		}
		fmt.Fprintf(&sb, " $%02X", b)
		if col == bytesPerLine-1 || i == len(data)-1 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(',')
		}
	}
	return sb.String()
}

// Renderer turns a decoded Song into RGBDS macro source
type Renderer struct {
	Header       string
	LinePrefix   string
	BytesPerLine int
}

// NewRenderer creates a Renderer with the driver's defaults
func NewRenderer() *Renderer {
	return &Renderer{
		Header:       defaultHeader,
		LinePrefix:   "\tdb",
		BytesPerLine: 16,
	}
}

// Render serializes the whole song
func (r *Renderer) Render(song *Song) []byte {
	var sb strings.Builder
	sb.WriteString(r.Header)
	sb.WriteString("\n")

	r.renderSampleInfo(&sb, song)
	r.renderPanTable(&sb, song)
	r.renderEnvelope(&sb, song, KindPulse, "loadPulseVolLen", pulseVolLen)
	r.renderEnvelope(&sb, song, KindPulse, "loadPulseNoteDuty", pulseNoteDuty)
	r.renderEnvelope(&sb, song, KindWave, "loadWaveIndexLen", waveIndexLen)
	r.renderEnvelope(&sb, song, KindWave, "loadWaveNoteVol", waveNoteVol)
	r.renderWaveTable(&sb, song)
	r.renderEnvelope(&sb, song, KindNoise, "loadNoiseVolLen", noiseVolLen)
	r.renderEnvelope(&sb, song, KindNoise, "loadNoiseFreq", noiseFreq)
	r.renderOrderTable(&sb, song.Orders)
	r.renderPatterns(&sb, song)
	r.renderSampleData(&sb, song)

	return []byte(sb.String())
}

// beginMacro writes the purge guard and the macro header, without a trailing newline
func beginMacro(sb *strings.Builder, name string) {
	fmt.Fprintf(sb, "\nIF DEF(%s)\nPURGE %s\nENDC\n", name, name)
	fmt.Fprintf(sb, "\nMACRO %s", name)
}

func endMacro(sb *strings.Builder) {
	sb.WriteString("ENDM\n")
}

func (r *Renderer) renderSampleInfo(sb *strings.Builder, song *Song) {
	beginMacro(sb, "loadSampleInfo")
	sb.WriteString("\n")
	for i, s := range song.Samples {
		if s == nil {
			fmt.Fprintf(sb, "; Sample #%d (Null pointer)\n", i)
			sb.WriteString("\tdb HIGH(NULL)\n")
			sb.WriteString("\tdb $01\n")
			continue
		}
		fmt.Fprintf(sb, "; Sample #%d\n", i)
		fmt.Fprintf(sb, "\tdb HIGH(sample%dData)\n", i)
		fmt.Fprintf(sb, "\tdb (sample%dData.end - sample%dData) >> 4\n", i, i)
	}
	endMacro(sb)
}

func (r *Renderer) renderPanTable(sb *strings.Builder, song *Song) {
	labels := []string{".pulse:\n", ".wave:\n", ".noise:\n"}
	beginMacro(sb, "loadPanTable")
	sb.WriteString("\n")
	for _, kind := range InstrumentKinds {
		pan := make([]byte, 0, InstrumentsPerKind)
		for _, inst := range song.Instruments[kind] {
			pan = append(pan, inst.Panning&0x11)
		}
		sb.WriteString(labels[kind])
		sb.WriteString(DumpBin(pan, r.BytesPerLine, r.LinePrefix))
	}

	pan := make([]byte, 0, SampleSlots)
	for _, p := range song.SamplePanning {
		pan = append(pan, p&0x11)
	}
	sb.WriteString(".smp:\n")
	sb.WriteString(DumpBin(pan, r.BytesPerLine, r.LinePrefix))
	endMacro(sb)
}

// rowFormatter renders one envelope row of one table
type rowFormatter func(EnvelopeRow) string

func loopOperand(row EnvelopeRow) string {
	if row.Kind == RowEnd {
		return "DN_END"
	}
	return fmt.Sprintf("$%02X", row.Target)
}

func pulseVolLen(row EnvelopeRow) string {
	if row.IsMarker() {
		return "dpVolLen DN_JUMP"
	}
	return fmt.Sprintf("dpVolLen $%X, $%X", row.Volume, row.Length)
}

func pulseNoteDuty(row EnvelopeRow) string {
	if row.IsMarker() {
		return "dpNoteDuty " + loopOperand(row)
	}
	return fmt.Sprintf("dpNoteDuty %s, %d", NoteName(row.Note+envelopeNoteBias), row.Shape)
}

func waveIndexLen(row EnvelopeRow) string {
	if row.IsMarker() {
		return "dwIndexLen DN_JUMP"
	}
	return fmt.Sprintf("dwIndexLen $%X, $%X", row.Shape, row.Length)
}

func waveNoteVol(row EnvelopeRow) string {
	if row.IsMarker() {
		return "dwNoteVol " + loopOperand(row)
	}
	return fmt.Sprintf("dwNoteVol %s, %X", NoteName(row.Note+envelopeNoteBias), row.Volume)
}

func noiseVolLen(row EnvelopeRow) string {
	if row.IsMarker() {
		return "dnVolLen DN_JUMP"
	}
	return fmt.Sprintf("dnVolLen $%X, $%X", row.Volume, row.Length)
}

func noiseFreq(row EnvelopeRow) string {
	if row.IsMarker() {
		return "dnPolyFreq " + loopOperand(row)
	}
	return fmt.Sprintf("dnPolyFreq $%02X", row.Shape)
}

func (r *Renderer) renderEnvelope(sb *strings.Builder, song *Song, kind InstrumentKind, name string, format rowFormatter) {
	beginMacro(sb, name)
	for _, inst := range song.Instruments[kind] {
		fmt.Fprintf(sb, "\n; %s #%d\n", kind, inst.Index)
		for _, row := range inst.Envelope {
			sb.WriteString("\t")
			sb.WriteString(format(row))
			sb.WriteString("\n")
		}
	}
	endMacro(sb)
}

func (r *Renderer) renderWaveTable(sb *strings.Builder, song *Song) {
	beginMacro(sb, "loadWaveTable")
	sb.WriteString("\n")
	for _, w := range song.Waveforms {
		fmt.Fprintf(sb, "\twavetable %X\n", w[:])
	}
	endMacro(sb)
}

// RenderOrderEntry renders a single order entry; pad entries render empty
func RenderOrderEntry(e OrderEntry) string {
	switch e.Kind {
	case OrderEmpty:
		return "db $00 ; Empty"
	case OrderEnd:
		return "db $00, $FF ; End of song section"
	case OrderLoop:
		return fmt.Sprintf("db $00, $%02X ; Loop command", e.Target)
	case OrderPattern:
		return fmt.Sprintf("db HIGH(pattern%dData)", e.Pattern)
	default:
		return ""
	}
}

func (r *Renderer) renderOrderTable(sb *strings.Builder, orders []OrderEntry) {
	beginMacro(sb, "loadOrderTable")
	sb.WriteString("\n")
	for _, e := range orders {
		if e.Kind == OrderPad {
			continue
		}
		sb.WriteString("\t")
		sb.WriteString(RenderOrderEntry(e))
		sb.WriteString("\n")
	}
	endMacro(sb)
}

func channelFields(ch Channel) (string, string) {
	note := "___"
	if ch.HasNote {
		note = NoteName(ch.Note)
	}
	switch {
	case ch.Tied:
		return note, "TI"
	case ch.HasInstrument:
		return note, fmt.Sprintf("$%X", ch.Instrument)
	default:
		return note, "__"
	}
}

// RenderRow renders the dn operands of a pattern row
func RenderRow(row Row) string {
	fields := make([]string, 0, 9)

	n, i := channelFields(row.Pulse1)
	fields = append(fields, n, i)
	n, i = channelFields(row.Pulse2)
	fields = append(fields, n, i)

	if row.HasSample {
		fields = append(fields, "SMP", fmt.Sprintf("$%X", row.Sample))
	} else {
		n, i = channelFields(row.Wave)
		fields = append(fields, n, i)
	}

	if row.HasNoise {
		fields = append(fields, fmt.Sprintf("$%X", row.NoiseInstrument))
	} else {
		fields = append(fields, "__")
	}

	if row.HasEffect {
		fields = append(fields, EffectName(row.Effect.Command), fmt.Sprintf("$%X", row.Effect.Arg))
	} else {
		fields = append(fields, "__", "__")
	}
	return strings.Join(fields, ", ")
}

func (r *Renderer) renderPatterns(sb *strings.Builder, song *Song) {
	beginMacro(sb, "loadPatternData")
	for _, pat := range song.Patterns {
		fmt.Fprintf(sb, "\nds align[8]\npattern%dData:\n", pat.Index)
		for _, row := range pat.Rows {
			sb.WriteString("\tdn ")
			sb.WriteString(RenderRow(row))
			sb.WriteString("\n")
		}
	}
	endMacro(sb)
}

func (r *Renderer) renderSampleData(sb *strings.Builder, song *Song) {
	beginMacro(sb, "loadSampleData")
	sb.WriteString("\n")
	for i, s := range song.Samples {
		if s == nil {
			continue
		}
		sb.WriteString("ds align[8]\n")
		fmt.Fprintf(sb, "sample%dData:\n", i)
		sb.WriteString(DumpBin(s.Data, r.BytesPerLine, r.LinePrefix))
		sb.WriteString(".end:\n")
	}
	endMacro(sb)
}
