package converter

// Decode runs every table decoder over the banks
func Decode(banks *Banks) (*Song, error) {
	if banks == nil || len(banks.Music) == 0 {
		return nil, ErrNoMusicSource
	}
	music := padBank(banks.Music)

	song := &Song{
		Instruments:   DecodeInstruments(music),
		Waveforms:     DecodeWaveforms(music),
		Orders:        DecodeOrderTable(music),
		HasSampleBank: banks.HasSampleBank(),
		SampleUsage:   NewSampleUsage(),
	}
	song.Patterns = DecodePatterns(music, &song.SampleUsage)
	song.Samples, song.SamplePanning, song.Warnings = DecodeSamples(music, banks.Sample, song.HasSampleBank, song.SampleUsage)
	return song, nil
}
