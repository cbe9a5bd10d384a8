package player

import "sync"

// Mock is a test double for the external player. It is safe for concurrent
// use because the session's background tasks poll it from other goroutines.
type Mock struct {
	mu        sync.Mutex
	playing   bool
	playErr   error
	pollErr   error
	position  float64
	duration  string
	volume    int64
	loop      bool
	playCalls []string
	loopCalls []bool
	seekCalls []int
	closed    bool
}

// NewMock returns a stopped mock player.
func NewMock() *Mock {
	return &Mock{duration: "00:00", volume: 100}
}

func (m *Mock) Play(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls = append(m.playCalls, url)
	if m.playErr != nil {
		return m.playErr
	}
	m.playing = true
	return nil
}

func (m *Mock) PauseResume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = !m.playing
	return nil
}

func (m *Mock) Seek(delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, delta)
	m.position += float64(delta)
	return nil
}

func (m *Mock) VolumeUp() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.volume <= 95 {
		m.volume += 5
	}
	return nil
}

func (m *Mock) VolumeDown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.volume >= 5 {
		m.volume -= 5
	}
	return nil
}

func (m *Mock) SetLoop(loop bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loop = loop
	m.loopCalls = append(m.loopCalls, loop)
	return nil
}

func (m *Mock) IsPlaying() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pollErr != nil {
		return false, m.pollErr
	}
	return m.playing, nil
}

func (m *Mock) Position() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pollErr != nil {
		return 0, m.pollErr
	}
	return m.position, nil
}

func (m *Mock) Duration() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Volume() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// SetPlaying flips what IsPlaying reports, simulating the process state.
func (m *Mock) SetPlaying(playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = playing
}

// SetPlayError makes the next Play calls fail.
func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// SetPollError makes IsPlaying and Position fail, simulating a player that
// is not ready yet.
func (m *Mock) SetPollError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollErr = err
}

// SetPosition sets the reported playback position.
func (m *Mock) SetPosition(pos float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
}

// SetDuration sets the reported track duration string.
func (m *Mock) SetDuration(d string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

// PlayCalls returns every URL passed to Play so far.
func (m *Mock) PlayCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.playCalls))
	copy(out, m.playCalls)
	return out
}

// LoopCalls returns the sequence of SetLoop arguments.
func (m *Mock) LoopCalls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.loopCalls))
	copy(out, m.loopCalls)
	return out
}

// Loop reports the last loop flag set.
func (m *Mock) Loop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loop
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
