package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	midiNoteOffset = 24 // C_0 lands on MIDI C1
	drumChannel    = 9
	drumBaseKey    = 38
)

// MIDIExporter renders the playback order of a song to a Standard MIDI File
type MIDIExporter struct {
	ticksPerQuarter uint16
	tempo           float64
	velocity        uint8
}

// NewMIDIExporter creates an exporter with one row per 16th note at 120 BPM
func NewMIDIExporter() *MIDIExporter {
	return &MIDIExporter{
		ticksPerQuarter: 96,
		tempo:           120.0,
		velocity:        100,
	}
}

type timedMessage struct {
	tick uint32
	seq  int
	msg  []byte
}

// timeline collects absolute-time events for one track
type timeline struct {
	events []timedMessage
}

func (t *timeline) add(tick uint32, msg []byte) {
	t.events = append(t.events, timedMessage{tick: tick, seq: len(t.events), msg: msg})
}

func (t *timeline) track(name string) smf.Track {
	sort.SliceStable(t.events, func(i, j int) bool {
		if t.events[i].tick != t.events[j].tick {
			return t.events[i].tick < t.events[j].tick
		}
		return t.events[i].seq < t.events[j].seq
	})
	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(name))
	var last uint32
	for _, ev := range t.events {
		track.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	track.Close(0)
	return track
}

// PlaybackPatterns returns the pattern indices in order table order,
// stopping at the first end marker. Loops are not followed.
func PlaybackPatterns(song *Song) []int {
	var out []int
	for _, e := range song.Orders {
		if e.Kind == OrderEnd {
			break
		}
		if e.Kind == OrderPattern && e.Pattern >= 0 && e.Pattern < PatternCount {
			out = append(out, e.Pattern)
		}
	}
	return out
}

func midiKey(note int) uint8 {
	k := note + midiNoteOffset
	if k < 0 {
		return 0
	}
	if k > 127 {
		return 127
	}
	return uint8(k)
}

// melodicTrack builds a track for pulse1/pulse2/wave
func (m *MIDIExporter) melodicTrack(song *Song, order []int, channel uint8, pick func(Row) (Channel, bool)) *timeline {
	tl := &timeline{}
	ticksPerRow := uint32(m.ticksPerQuarter) / 4
	var tick uint32
	active := false
	var activeKey uint8

	stop := func(at uint32) {
		if active {
			tl.add(at, midi.NoteOff(channel, activeKey))
			active = false
		}
	}

	for _, p := range order {
		for _, row := range song.Patterns[p].Rows {
			ch, interrupted := pick(row)
			if interrupted {
				stop(tick)
			} else if ch.HasNote {
				key := midiKey(ch.Note)
				if !ch.Tied || !active || key != activeKey {
					stop(tick)
					tl.add(tick, midi.NoteOn(channel, key, m.velocity))
					active = true
					activeKey = key
				}
			}
			tick += ticksPerRow
		}
	}
	stop(tick)
	return tl
}

func (m *MIDIExporter) noiseTrack(song *Song, order []int) *timeline {
	tl := &timeline{}
	ticksPerRow := uint32(m.ticksPerQuarter) / 4
	var tick uint32
	for _, p := range order {
		for _, row := range song.Patterns[p].Rows {
			if row.HasNoise {
				key := drumBaseKey + row.NoiseInstrument
				tl.add(tick, midi.NoteOn(drumChannel, key, m.velocity))
				tl.add(tick+ticksPerRow, midi.NoteOff(drumChannel, key))
			}
			tick += ticksPerRow
		}
	}
	return tl
}

// GenerateMIDI creates a format 1 SMF with one track per hardware channel
func (m *MIDIExporter) GenerateMIDI(song *Song) ([]byte, error) {
	if song == nil {
		return nil, errors.New("nil song")
	}
	order := PlaybackPatterns(song)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTempo(m.tempo))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	tracks := []struct {
		name string
		tl   *timeline
	}{
		{"Pulse 1", m.melodicTrack(song, order, 0, func(r Row) (Channel, bool) { return r.Pulse1, false })},
		{"Pulse 2", m.melodicTrack(song, order, 1, func(r Row) (Channel, bool) { return r.Pulse2, false })},
		{"Wave", m.melodicTrack(song, order, 2, func(r Row) (Channel, bool) { return r.Wave, r.HasSample })},
		{"Noise", m.noiseTrack(song, order)},
	}
	for _, t := range tracks {
		if err := s.Add(t.tl.track(t.name)); err != nil {
			return nil, fmt.Errorf("failed to add track: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteMIDIFile writes the exported song to a file
func (m *MIDIExporter) WriteMIDIFile(song *Song, filename string) error {
	data, err := m.GenerateMIDI(song)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
