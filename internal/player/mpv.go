package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/DexterLB/mpvipc"
	"github.com/pkg/errors"
)

const (
	volumeStep = 5
	maxVolume  = 100
)

// MPV runs an mpv process in idle mode and controls it over its JSON IPC
// socket.
type MPV struct {
	conn       *mpvipc.Connection
	cmd        *exec.Cmd
	socketPath string
}

// MPVOptions configures the spawned process.
type MPVOptions struct {
	// SocketDir is where the IPC socket is created. Defaults to a quaver
	// directory under the system temp dir.
	SocketDir string
	// CookiesPath, when set, is passed to mpv for age-gated streams.
	CookiesPath string
}

// NewMPV spawns mpv and connects to its IPC socket, retrying until the
// process is ready or the startup timeout elapses.
func NewMPV(opts MPVOptions) (*MPV, error) {
	dir := opts.SocketDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "quaver")
	}
	sockPath := filepath.Join(dir, "mpv.sock")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to make socket directory")
	}
	if err := os.RemoveAll(sockPath); err != nil {
		return nil, errors.Wrap(err, "failed to clean up stale socket")
	}

	args := []string{
		"--idle",
		"--quiet",
		"--no-video",
		"--no-input-terminal",
		"--volume=100",
		"--volume-max=100",
		"--input-ipc-server=" + sockPath,
	}
	if opts.CookiesPath != "" {
		args = append(args, "--cookies", "--cookies-file="+opts.CookiesPath)
	}

	cmd := exec.Command("mpv", args...)
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start mpv")
	}

	conn := mpvipc.NewConnection(sockPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Spin until the socket accepts us.
	var err error
	for {
		err = conn.Open()
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			return nil, errors.Wrap(err, "failed to open mpv connection")
		case <-time.After(50 * time.Millisecond):
		}
	}

	return &MPV{conn: conn, cmd: cmd, socketPath: sockPath}, nil
}

func (m *MPV) Play(url string) error {
	if _, err := m.conn.Call("loadfile", url, "replace"); err != nil {
		return errors.Wrap(err, "loadfile")
	}
	if err := m.conn.Set("pause", false); err != nil {
		return errors.Wrap(err, "unpause")
	}
	return nil
}

func (m *MPV) PauseResume() error {
	_, err := m.conn.Call("cycle", "pause")
	return errors.Wrap(err, "cycle pause")
}

func (m *MPV) Seek(delta int) error {
	_, err := m.conn.Call("seek", delta)
	return errors.Wrap(err, "seek")
}

func (m *MPV) VolumeUp() error {
	return m.nudgeVolume(volumeStep)
}

func (m *MPV) VolumeDown() error {
	return m.nudgeVolume(-volumeStep)
}

func (m *MPV) nudgeVolume(delta int64) error {
	vol, err := m.Volume()
	if err != nil {
		return err
	}
	vol += delta
	if vol < 0 {
		vol = 0
	}
	if vol > maxVolume {
		vol = maxVolume
	}
	return errors.Wrap(m.conn.Set("volume", vol), "set volume")
}

func (m *MPV) SetLoop(loop bool) error {
	value := "no"
	if loop {
		value = "inf"
	}
	return errors.Wrap(m.conn.Set("loop-file", value), "set loop-file")
}

// IsPlaying reports whether mpv is actively decoding. core-idle is true
// whenever playback is paused, buffering or no file is loaded.
func (m *MPV) IsPlaying() (bool, error) {
	raw, err := m.conn.Get("core-idle")
	if err != nil {
		return false, errors.Wrap(err, "get core-idle")
	}
	idle, ok := raw.(bool)
	if !ok {
		return false, errors.Errorf("unexpected core-idle value %T", raw)
	}
	return !idle, nil
}

func (m *MPV) Position() (float64, error) {
	raw, err := m.conn.Get("time-pos")
	if err != nil {
		return 0, errors.Wrap(err, "get time-pos")
	}
	pos, ok := raw.(float64)
	if !ok {
		return 0, errors.Errorf("unexpected time-pos value %T", raw)
	}
	return pos, nil
}

// Duration returns "MM:SS", or "00:00" when mpv has not loaded the track far
// enough to know.
func (m *MPV) Duration() string {
	raw, err := m.conn.Get("duration")
	if err != nil {
		return "00:00"
	}
	secs, ok := raw.(float64)
	if !ok || secs < 0 {
		return "00:00"
	}
	return FormatDuration(int64(secs))
}

func (m *MPV) Volume() (int64, error) {
	raw, err := m.conn.Get("volume")
	if err != nil {
		return 0, errors.Wrap(err, "get volume")
	}
	vol, ok := raw.(float64)
	if !ok {
		return 0, errors.Errorf("unexpected volume value %T", raw)
	}
	return int64(vol), nil
}

// Close terminates the connection and the mpv process.
func (m *MPV) Close() error {
	_, _ = m.conn.Call("quit")
	_ = m.conn.Close()
	if m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
		_ = m.cmd.Wait()
	}
	return os.RemoveAll(m.socketPath)
}

// FormatDuration renders whole seconds as "MM:SS".
func FormatDuration(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
