package converter

// waveVolumeTable maps the 2-bit wave volume field to the NR32 output level order
var waveVolumeTable = [4]uint8{0, 3, 2, 1}

// ExpandPanning replicates a pan table entry across the neighbouring bits,
// giving the NR51 style mask the driver stores.
func ExpandPanning(v uint8) uint8 {
	return v | (v << 1) | (v << 2) | (v << 3)
}

// signedNote converts the 6-bit note field to a signed offset in [-32, 31]
func signedNote(raw uint8) int {
	n := int(raw)
	if n >= 0x20 {
		n -= 0x40
	}
	return n
}

// markerRow builds a loop or end row from the byte that replaces the note field
func markerRow(v uint8) EnvelopeRow {
	if v == EnvelopeEndMarker {
		return EnvelopeRow{Kind: RowEnd}
	}
	return EnvelopeRow{Kind: RowLoop, Target: v}
}

// DecodeInstruments reads all 3x16 instruments from the music bank
func DecodeInstruments(music []byte) [3][InstrumentsPerKind]Instrument {
	var out [3][InstrumentsPerKind]Instrument
	for _, kind := range InstrumentKinds {
		for idx := 0; idx < InstrumentsPerKind; idx++ {
			out[kind][idx] = decodeInstrument(music, kind, idx)
		}
	}
	return out
}

func decodeInstrument(music []byte, kind InstrumentKind, idx int) Instrument {
	inst := Instrument{
		Kind:    kind,
		Index:   idx,
		Panning: ExpandPanning(music[PanTableOffset+int(kind)*InstrumentsPerKind+idx]),
	}
	for r := 0; r < EnvelopeRows; r++ {
		off := idx*EnvelopeRows + r
		switch kind {
		case KindPulse:
			inst.Envelope[r] = decodePulseRow(music[PulseVolLenOffset+off], music[PulseNoteDutyOffset+off])
		case KindWave:
			inst.Envelope[r] = decodeWaveRow(music[WaveIndexLenOffset+off], music[WaveNoteVolOffset+off])
		case KindNoise:
			inst.Envelope[r] = decodeNoiseRow(music[NoiseVolLenOffset+off], music[NoiseFreqOffset+off])
		}
	}
	return inst
}

func decodePulseRow(volLen, noteDuty uint8) EnvelopeRow {
	if volLen&0x0F == 0 {
		return markerRow(noteDuty)
	}
	return EnvelopeRow{
		Kind:   RowNote,
		Length: volLen & 0x0F,
		Volume: volLen >> 4,
		Shape:  noteDuty & 0x03,
		Note:   signedNote(noteDuty >> 2),
	}
}

func decodeWaveRow(indexLen, noteVol uint8) EnvelopeRow {
	if indexLen&0x0F == 0 {
		return markerRow(noteVol)
	}
	return EnvelopeRow{
		Kind:   RowNote,
		Length: indexLen & 0x0F,
		Shape:  indexLen >> 4,
		Volume: waveVolumeTable[noteVol&0x03],
		Note:   signedNote(noteVol >> 2),
	}
}

func decodeNoiseRow(volLen, freq uint8) EnvelopeRow {
	if volLen&0x0F == 0 {
		return markerRow(freq)
	}
	return EnvelopeRow{
		Kind:   RowNote,
		Length: volLen & 0x0F,
		Volume: volLen >> 4,
		Shape:  freq,
	}
}

// DecodeWaveforms copies the 16 wave RAM images out of the music bank
func DecodeWaveforms(music []byte) [WaveformCount]Waveform {
	var out [WaveformCount]Waveform
	for i := range out {
		copy(out[i][:], music[WaveTableOffset+i*WaveformSize:])
	}
	return out
}
