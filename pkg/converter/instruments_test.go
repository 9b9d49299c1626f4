package converter

import "testing"

func newMusicBank() []byte {
	return make([]byte, BankSize)
}

func TestExpandPanning(t *testing.T) {
	expected := []uint8{
		0x00, 0x0F, 0x1E, 0x1F, 0x3C, 0x3F, 0x3E, 0x3F,
		0x78, 0x7F, 0x7E, 0x7F, 0x7C, 0x7F, 0x7E, 0x7F,
	}
	for nibble, want := range expected {
		got := ExpandPanning(uint8(nibble))
		if got != want {
			t.Errorf("ExpandPanning(%d) = $%02X, want $%02X", nibble, got, want)
		}
		// bit 0 of the nibble fills the low four bits
		if nibble&1 != 0 && got&0x0F != 0x0F {
			t.Errorf("ExpandPanning(%d) low bits = $%X, want $F", nibble, got&0x0F)
		}
	}

	// left+right pan byte expands to a full mask
	if got := ExpandPanning(0x11); got != 0xFF {
		t.Errorf("ExpandPanning($11) = $%02X, want $FF", got)
	}
}

func TestSignedNote(t *testing.T) {
	for raw := 0; raw < 64; raw++ {
		got := signedNote(uint8(raw))
		want := raw
		if raw >= 32 {
			want = raw - 64
		}
		if got != want {
			t.Errorf("signedNote(%d) = %d, want %d", raw, got, want)
		}
		if got < -32 || got > 31 {
			t.Errorf("signedNote(%d) = %d out of range", raw, got)
		}
	}
}

func TestDecodePulseRow(t *testing.T) {
	tests := []struct {
		name     string
		volLen   uint8
		noteDuty uint8
		want     EnvelopeRow
	}{
		{"end marker", 0xA0, 0xFF, EnvelopeRow{Kind: RowEnd}},
		{"loop marker", 0x00, 0x05, EnvelopeRow{Kind: RowLoop, Target: 5}},
		{"note", 0xA3, 0x21<<2 | 2, EnvelopeRow{Kind: RowNote, Length: 3, Volume: 0xA, Shape: 2, Note: -31}},
		{"positive note", 0x1F, 0x0C<<2 | 1, EnvelopeRow{Kind: RowNote, Length: 0xF, Volume: 1, Shape: 1, Note: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodePulseRow(tt.volLen, tt.noteDuty)
			if got != tt.want {
				t.Errorf("decodePulseRow($%02X, $%02X) = %+v, want %+v", tt.volLen, tt.noteDuty, got, tt.want)
			}
		})
	}
}

func TestDecodeWaveRow(t *testing.T) {
	tests := []struct {
		name     string
		indexLen uint8
		noteVol  uint8
		want     EnvelopeRow
	}{
		{"end marker", 0x50, 0xFF, EnvelopeRow{Kind: RowEnd}},
		{"volume 1 maps to 3", 0x52, 0x05<<2 | 1, EnvelopeRow{Kind: RowNote, Length: 2, Shape: 5, Volume: 3, Note: 5}},
		{"volume 2 maps to 2", 0xF1, 0x3F<<2 | 2, EnvelopeRow{Kind: RowNote, Length: 1, Shape: 0xF, Volume: 2, Note: -1}},
		{"volume 3 maps to 1", 0x01, 0x00<<2 | 3, EnvelopeRow{Kind: RowNote, Length: 1, Volume: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeWaveRow(tt.indexLen, tt.noteVol)
			if got != tt.want {
				t.Errorf("decodeWaveRow($%02X, $%02X) = %+v, want %+v", tt.indexLen, tt.noteVol, got, tt.want)
			}
		})
	}
}

func TestDecodeNoiseRow(t *testing.T) {
	got := decodeNoiseRow(0x71, 0x5A)
	want := EnvelopeRow{Kind: RowNote, Length: 1, Volume: 7, Shape: 0x5A}
	if got != want {
		t.Errorf("decodeNoiseRow() = %+v, want %+v", got, want)
	}

	got = decodeNoiseRow(0x70, 0x03)
	if got.Kind != RowLoop || got.Target != 3 {
		t.Errorf("decodeNoiseRow() loop = %+v, want loop to 3", got)
	}
}

func TestZeroLengthRowsAreMarkers(t *testing.T) {
	decoders := map[string]func(a, b uint8) EnvelopeRow{
		"pulse": decodePulseRow,
		"wave":  decodeWaveRow,
		"noise": decodeNoiseRow,
	}
	for name, decode := range decoders {
		for a := 0; a < 256; a++ {
			for _, b := range []uint8{0x00, 0x01, 0x7F, 0xFE, 0xFF} {
				row := decode(uint8(a), b)
				if row.IsMarker() != (a&0x0F == 0) {
					t.Fatalf("%s row ($%02X, $%02X): IsMarker = %v", name, a, b, row.IsMarker())
				}
			}
		}
	}
}

func TestDecodeInstruments(t *testing.T) {
	music := newMusicBank()
	music[PanTableOffset+int(KindWave)*InstrumentsPerKind+2] = 0x01
	music[PulseVolLenOffset+1*EnvelopeRows+3] = 0x84
	music[PulseNoteDutyOffset+1*EnvelopeRows+3] = 0x10<<2 | 3
	music[NoiseVolLenOffset+15*EnvelopeRows+15] = 0x00
	music[NoiseFreqOffset+15*EnvelopeRows+15] = 0xFF

	insts := DecodeInstruments(music)

	if got := insts[KindWave][2].Panning; got != 0x0F {
		t.Errorf("wave 2 panning = $%02X, want $0F", got)
	}
	if got := insts[KindPulse][0].Panning; got != 0 {
		t.Errorf("pulse 0 panning = $%02X, want $00", got)
	}

	row := insts[KindPulse][1].Envelope[3]
	want := EnvelopeRow{Kind: RowNote, Length: 4, Volume: 8, Shape: 3, Note: 16}
	if row != want {
		t.Errorf("pulse 1 row 3 = %+v, want %+v", row, want)
	}

	if insts[KindNoise][15].Envelope[15].Kind != RowEnd {
		t.Errorf("noise 15 row 15 kind = %v, want RowEnd", insts[KindNoise][15].Envelope[15].Kind)
	}
	if insts[KindNoise][15].Kind != KindNoise || insts[KindNoise][15].Index != 15 {
		t.Errorf("noise 15 identity = %v #%d", insts[KindNoise][15].Kind, insts[KindNoise][15].Index)
	}
}

func TestDecodeWaveforms(t *testing.T) {
	music := newMusicBank()
	for i := 0; i < WaveformSize; i++ {
		music[WaveTableOffset+3*WaveformSize+i] = uint8(i + 1)
	}

	waves := DecodeWaveforms(music)
	for i, b := range waves[3] {
		if b != uint8(i+1) {
			t.Errorf("waveform 3 byte %d = $%02X, want $%02X", i, b, i+1)
		}
	}
	if waves[2] != (Waveform{}) || waves[4] != (Waveform{}) {
		t.Error("neighbouring waveforms should be empty")
	}
}
