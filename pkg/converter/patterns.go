package converter

// patternReader walks the row bytes of a pattern
type patternReader struct {
	data []byte
	pos  int
}

func (r *patternReader) next() uint8 {
	b := r.data[r.pos]
	r.pos++
	return b
}

// channel decodes a note byte plus instrument byte. The instrument byte
// is always consumed but only used for untied notes.
func (r *patternReader) channel() Channel {
	var ch Channel
	noteByte := r.next()
	if raw := int(noteByte >> 1); raw != 0 {
		ch.HasNote = true
		ch.Note = raw - PatternNoteBias
		ch.Tied = noteByte&1 != 0
	}
	instByte := r.next()
	if ch.HasNote && !ch.Tied {
		ch.HasInstrument = true
		ch.Instrument = instByte >> 4
	}
	return ch
}

// DecodePatterns reads every pattern slot and records sample references in usage
func DecodePatterns(music []byte, usage *SampleUsage) [PatternCount]Pattern {
	var out [PatternCount]Pattern
	for p := 0; p < PatternCount; p++ {
		start := PatternDataOffset + p*PatternSize
		out[p] = decodePattern(p, music[start:start+PatternSize], usage)
	}
	return out
}

func decodePattern(index int, data []byte, usage *SampleUsage) Pattern {
	pat := Pattern{Index: index}
	r := &patternReader{data: data}
	for i := range pat.Rows {
		pat.Rows[i] = decodeRow(r, usage)
	}
	return pat
}

func decodeRow(r *patternReader, usage *SampleUsage) Row {
	var row Row
	row.Pulse1 = r.channel()
	row.Pulse2 = r.channel()

	if r.data[r.pos] == SampleTriggerMarker {
		r.pos++
		row.HasSample = true
		row.Sample = r.next()
		usage.Mark(int(row.Sample))
	} else {
		row.Wave = r.channel()
	}

	if b := r.next(); b != 0 {
		row.HasNoise = true
		row.NoiseInstrument = b >> 4
	}

	if b := r.next(); b != 0 {
		row.HasEffect = true
		row.Effect = Effect{Command: b >> 4, Arg: b & 0x0F}
	}
	return row
}
