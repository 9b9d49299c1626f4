package converter

import "fmt"

// DecodeSamples resolves the sample info table against the sample bank.
// Problems are returned as warnings, never as errors.
func DecodeSamples(music, sampleBank []byte, hasBank bool, usage SampleUsage) ([SampleSlots]*Sample, [SampleSlots]uint8, []Warning) {
	var samples [SampleSlots]*Sample
	var panning [SampleSlots]uint8
	var warnings []Warning
	for i := range panning {
		panning[i] = 0xFF
	}

	if !hasBank {
		for i, ref := range usage.Referenced {
			if ref {
				warnings = append(warnings, Warning{
					Kind:    WarnNoSampleBank,
					Sample:  i,
					Message: fmt.Sprintf("Sample #%X is referenced in music data, but no sample bank was passed!", i),
				})
			}
		}
		return samples, panning, warnings
	}

	for i := 0; i < SampleSlots; i++ {
		addr := int(music[SampleInfoOffset+i*2])<<8 - BankBase
		length := int(music[SampleInfoOffset+i*2+1]) * SampleLengthUnit

		if addr <= 0 {
			if usage.Referenced[i] {
				warnings = append(warnings, Warning{
					Kind:    WarnSampleUndefined,
					Sample:  i,
					Message: fmt.Sprintf("Sample #%X is referenced in music data, but index sample contains invalid/null data!", i),
				})
			}
			continue
		}

		panning[i] = ExpandPanning(music[PanTableOffset+3*InstrumentsPerKind+i])

		end := addr + length
		if length > 0 && end > len(sampleBank) {
			end = len(sampleBank)
			warnings = append(warnings, Warning{
				Kind:    WarnSampleTruncated,
				Sample:  i,
				Message: fmt.Sprintf("Sample #%X is longer than sample bank! Cut short!", i),
			})
		}
		data := []byte{}
		if addr < end {
			data = append(data, sampleBank[addr:end]...)
		}
		samples[i] = &Sample{Index: i, Address: addr, Panning: panning[i], Data: data}
	}
	return samples, panning, warnings
}
