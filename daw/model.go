package daw

import (
	"fmt"
	"sync"
	"time"
)

const (
	NumTracks = 32
	NumScenes = 8
	BankSize  = 8
	MaxValue  = 127
)

// StopBehavior is what the play cursor does when the transport stops
type StopBehavior string

const (
	StopPause          StopBehavior = "pause"
	StopReturnToZero   StopBehavior = "return-to-zero"
	StopMovePlayCursor StopBehavior = "move-play-cursor"
)

// ClipState is the launcher state of one clip slot
type ClipState int

const (
	ClipEmpty ClipState = iota
	ClipStopped
	ClipPlaying
	ClipRecording
)

// Track holds the mixer and launcher state of one track
type Track struct {
	Name   string
	Muted  bool
	Solo   bool
	Armed  bool
	Volume int // 0-127
	Pan    int // 0-127, 64 is centre
	Clips  [NumScenes]ClipState
}

// Snapshot is a copy of the model safe to read without the lock
type Snapshot struct {
	Tempo     float64
	Playing   bool
	Recording bool
	Overdub   bool
	Metronome bool
	Position  float64
	Selected  int
	Tracks    [NumTracks]Track
}

// Model is an in-memory stand-in for the host application the surfaces
// control. Several surfaces may share one model, so every method locks.
type Model struct {
	mu sync.Mutex

	tempo     float64
	playing   bool
	recording bool
	overdub   bool
	metronome bool
	position  float64 // beats
	playStart float64
	selected  int
	tracks    [NumTracks]Track

	taps    []time.Time
	undo    []string
	redo    []string
	version uint64
}

// New creates a model with defaults
func New() *Model {
	m := &Model{tempo: 120}
	for i := range m.tracks {
		m.tracks[i] = Track{
			Name:   fmt.Sprintf("Track %d", i+1),
			Volume: 100,
			Pan:    64,
		}
	}
	return m
}

func (m *Model) changed(action string) {
	m.version++
	m.undo = append(m.undo, action)
	m.redo = m.redo[:0]
}

// Version increments on every change
func (m *Model) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Snapshot copies the current state
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Tempo:     m.tempo,
		Playing:   m.playing,
		Recording: m.recording,
		Overdub:   m.overdub,
		Metronome: m.metronome,
		Position:  m.position,
		Selected:  m.selected,
		Tracks:    m.tracks,
	}
}

// Play starts the transport at the current position
func (m *Model) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		return
	}
	m.playing = true
	m.playStart = m.position
}

// Stop halts the transport and moves the cursor according to behavior
func (m *Model) Stop(behavior StopBehavior) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing {
		// second stop always rewinds
		m.position = 0
		return
	}
	m.playing = false
	m.recording = false
	switch behavior {
	case StopReturnToZero:
		m.position = 0
	case StopMovePlayCursor:
		m.position = m.playStart
	}
}

// TogglePlay starts or stops the transport
func (m *Model) TogglePlay(behavior StopBehavior) bool {
	if m.IsPlaying() {
		m.Stop(behavior)
		return false
	}
	m.Play()
	return true
}

func (m *Model) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Advance moves the play position while playing
func (m *Model) Advance(beats float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.position += beats
	}
}

// ToggleRecord arms arrangement recording and starts the transport
func (m *Model) ToggleRecord() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recording = !m.recording
	if m.recording && !m.playing {
		m.playing = true
		m.playStart = m.position
	}
	m.changed("record")
	return m.recording
}

// ToggleOverdub flips launcher overdub
func (m *Model) ToggleOverdub() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overdub = !m.overdub
	return m.overdub
}

// ToggleMetronome flips the click
func (m *Model) ToggleMetronome() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metronome = !m.metronome
	return m.metronome
}

// Tap records a tempo tap. Taps more than two seconds apart start over.
// The tempo follows the average interval of the last four taps.
func (m *Model) Tap(at time.Time) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.taps); n > 0 && at.Sub(m.taps[n-1]) > 2*time.Second {
		m.taps = m.taps[:0]
	}
	m.taps = append(m.taps, at)
	if len(m.taps) > 5 {
		m.taps = m.taps[len(m.taps)-5:]
	}
	if len(m.taps) < 2 {
		return m.tempo
	}
	span := m.taps[len(m.taps)-1].Sub(m.taps[0])
	interval := span / time.Duration(len(m.taps)-1)
	if interval > 0 {
		m.tempo = clampTempo(60 / interval.Seconds())
	}
	return m.tempo
}

// SetTempo sets the tempo in BPM
func (m *Model) SetTempo(bpm float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tempo = clampTempo(bpm)
}

func clampTempo(bpm float64) float64 {
	return min(max(bpm, 20), 666)
}

func (m *Model) Tempo() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tempo
}

// Select makes track i the selected track
func (m *Model) Select(i int) {
	if i < 0 || i >= NumTracks {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = i
}

func (m *Model) Selected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// Track returns a copy of track i
func (m *Model) Track(i int) (Track, bool) {
	if i < 0 || i >= NumTracks {
		return Track{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracks[i], true
}

func (m *Model) update(i int, action string, fn func(t *Track)) {
	if i < 0 || i >= NumTracks {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.tracks[i])
	m.changed(action)
}

func (m *Model) ToggleMute(i int) {
	m.update(i, "mute", func(t *Track) { t.Muted = !t.Muted })
}

func (m *Model) ToggleSolo(i int) {
	m.update(i, "solo", func(t *Track) { t.Solo = !t.Solo })
}

func (m *Model) ToggleArm(i int) {
	m.update(i, "arm", func(t *Track) { t.Armed = !t.Armed })
}

func (m *Model) SetVolume(i, v int) {
	m.update(i, "volume", func(t *Track) { t.Volume = min(max(v, 0), MaxValue) })
}

func (m *Model) SetPan(i, v int) {
	m.update(i, "pan", func(t *Track) { t.Pan = min(max(v, 0), MaxValue) })
}

// LaunchClip plays the clip at scene, stopping the track's other clips.
// Launching an empty slot on an armed track records into it.
func (m *Model) LaunchClip(track, scene int) ClipState {
	if scene < 0 || scene >= NumScenes {
		return ClipEmpty
	}
	var state ClipState
	m.update(track, "launch", func(t *Track) {
		for s := range t.Clips {
			if t.Clips[s] == ClipPlaying || t.Clips[s] == ClipRecording {
				t.Clips[s] = ClipStopped
			}
		}
		switch {
		case t.Clips[scene] != ClipEmpty:
			t.Clips[scene] = ClipPlaying
		case t.Armed:
			t.Clips[scene] = ClipRecording
		}
		state = t.Clips[scene]
	})
	return state
}

// DeleteClip empties a slot
func (m *Model) DeleteClip(track, scene int) {
	if scene < 0 || scene >= NumScenes {
		return
	}
	m.update(track, "delete", func(t *Track) { t.Clips[scene] = ClipEmpty })
}

// DuplicateClip copies a slot into the next empty one on the same track
func (m *Model) DuplicateClip(track, scene int) bool {
	if scene < 0 || scene >= NumScenes {
		return false
	}
	done := false
	m.update(track, "duplicate", func(t *Track) {
		if t.Clips[scene] == ClipEmpty {
			return
		}
		for s := scene + 1; s < NumScenes; s++ {
			if t.Clips[s] == ClipEmpty {
				t.Clips[s] = ClipStopped
				done = true
				return
			}
		}
	})
	return done
}

// Undo pops the last action name onto the redo stack. Only the history is
// modelled; state is not rolled back.
func (m *Model) Undo() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return "", false
	}
	action := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, action)
	m.version++
	return action, true
}

// Redo replays the last undone action name
func (m *Model) Redo() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return "", false
	}
	action := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, action)
	m.version++
	return action, true
}
