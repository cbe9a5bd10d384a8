package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lfade/quaver/internal/config"
	"github.com/lfade/quaver/internal/history"
	"github.com/lfade/quaver/internal/keymap"
	"github.com/lfade/quaver/internal/player"
	"github.com/lfade/quaver/internal/playlists"
	"github.com/lfade/quaver/internal/profile"
	"github.com/lfade/quaver/internal/session"
	"github.com/lfade/quaver/internal/store"
	"github.com/lfade/quaver/internal/track"
)

var playerBarStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240"))

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("9"))

type tickMsg time.Time

type sessionEventMsg struct {
	event any
}

type app struct {
	controller *session.Controller
	sub        *session.Subscription
	player     player.Interface
	history    *history.Store
	profile    *profile.Store
	histStore  *store.Store
	plStore    *store.Store
	profStore  *store.Store
	keys       *keymap.Resolver
	seekStep   int
}

type model struct {
	app           *app
	status        session.Status
	playlistIndex int
	lastErr       string
	notice        string
	width         int
	height        int
}

func initialApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	histPath, err := cfg.StorePath("history")
	if err != nil {
		return nil, err
	}
	plPath, err := cfg.StorePath("playlists")
	if err != nil {
		return nil, err
	}
	profPath, err := cfg.StorePath("profile")
	if err != nil {
		return nil, err
	}

	histStore, err := store.Open(histPath)
	if err != nil {
		return nil, err
	}
	hist, err := history.New(histStore)
	if err != nil {
		histStore.Close()
		return nil, err
	}

	plStore, err := store.Open(plPath)
	if err != nil {
		histStore.Close()
		return nil, err
	}
	pls := playlists.New(plStore)

	profStore, err := store.Open(profPath)
	if err != nil {
		histStore.Close()
		plStore.Close()
		return nil, err
	}
	prof, err := profile.New(profStore)
	if err != nil {
		histStore.Close()
		plStore.Close()
		profStore.Close()
		return nil, err
	}

	mpv, err := player.NewMPV(player.MPVOptions{
		CookiesPath: cfg.Player.CookiesPath,
	})
	if err != nil {
		histStore.Close()
		plStore.Close()
		profStore.Close()
		return nil, err
	}

	controller := session.New(session.Deps{
		Player:    mpv,
		History:   hist,
		Profile:   prof,
		Playlists: pls,
	}, session.Options{
		ConfirmIdleBudget: cfg.Session.ConfirmIdleBudget,
		EndIdleThreshold:  cfg.Session.EndIdleThreshold,
	})

	return &app{
		controller: controller,
		sub:        controller.Subscribe(),
		player:     mpv,
		history:    hist,
		profile:    prof,
		histStore:  histStore,
		plStore:    plStore,
		profStore:  profStore,
		keys:       keymap.NewResolver(keymap.All),
		seekStep:   cfg.Player.SeekStep,
	}, nil
}

func (a *app) close() {
	a.controller.Close()
	a.player.Close()
	a.profile.Close()
	a.histStore.Close()
	a.plStore.Close()
	a.profStore.Close()
}

func initialModel(a *app) model {
	m := model{app: a}
	// Show the previous session's closing track until something plays.
	if last, err := a.history.LastPlayed(); err == nil && last != nil {
		m.notice = "last played: " + describe(last.Track)
	}
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForEvent(m.app.sub))
}

func waitForEvent(sub *session.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.NowPlaying:
			return sessionEventMsg{event: ev}
		case ev := <-sub.PlaylistEnded:
			return sessionEventMsg{event: ev}
		case ev := <-sub.Added:
			return sessionEventMsg{event: ev}
		case ev := <-sub.Errors:
			return sessionEventMsg{event: ev}
		case <-sub.Done:
			return nil
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch m.app.keys.Resolve(msg.String()) {
		case keymap.ActionQuit:
			m.app.close()
			return m, tea.Quit
		case keymap.ActionPlayPause:
			m.app.player.PauseResume()
		case keymap.ActionNextTrack:
			m.app.controller.Advance(session.Next)
		case keymap.ActionPrevTrack:
			m.app.controller.Advance(session.Previous)
		case keymap.ActionSeekBack:
			m.app.player.Seek(-m.app.seekStep)
		case keymap.ActionSeekForward:
			m.app.player.Seek(m.app.seekStep)
		case keymap.ActionVolumeUp:
			m.app.player.VolumeUp()
		case keymap.ActionVolumeDown:
			m.app.player.VolumeDown()
		case keymap.ActionStopPlaylist:
			m.app.controller.StopPlaylistMode()
		}

	case sessionEventMsg:
		switch ev := msg.event.(type) {
		case session.NowPlayingChange:
			m.notice = ""
			m.lastErr = ""
		case session.PlaylistEnded:
			m.notice = "playlist ended"
		case session.AddedToPlaylist:
			m.notice = fmt.Sprintf("added %s to %s", describe(ev.Track), ev.Playlist)
		case session.ErrorEvent:
			m.lastErr = fmt.Sprintf("%s: %v", ev.Op, ev.Err)
		}
		return m, waitForEvent(m.app.sub)

	case tickMsg:
		m.status = m.app.controller.Status()
		m.playlistIndex = m.app.controller.PlaylistIndex()
		return m, tickCmd()
	}

	return m, nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) View() string {
	innerWidth := m.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}

	var left string
	switch m.status.State {
	case session.StatePlaying:
		left = " ▶  " + describeCurrent(m.status.Track)
	case session.StateLoading:
		left = " …  " + describeCurrent(m.status.Track)
	case session.StateError:
		left = " ✗"
	default:
		left = " ⏹"
		if m.notice != "" {
			left += "  " + m.notice
		}
	}

	right := fmt.Sprintf("%s / %s  vol %d ",
		formatElapsed(m.status.Elapsed), m.status.Duration, m.status.Volume)
	if m.status.PlaylistMode {
		right = fmt.Sprintf("[%d] %s", m.playlistIndex+1, right)
	}

	padding := innerWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	view := playerBarStyle.Width(innerWidth).
		Render(left + strings.Repeat(" ", padding) + right)

	if m.lastErr != "" {
		view += "\n" + errorStyle.Render(" "+m.lastErr)
	}

	return view
}

func describeCurrent(t *track.Track) string {
	if t == nil {
		return ""
	}
	return describe(*t)
}

func describe(t track.Track) string {
	if t.IsZero() {
		return ""
	}
	if line := t.ArtistLine(); line != "" {
		return line + " - " + t.Title
	}
	return t.Title
}

func formatElapsed(seconds int64) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func main() {
	// The TUI owns stdout, so background logging goes to a file.
	if path := os.Getenv("QUAVER_LOG"); path != "" {
		f, err := tea.LogToFile(path, "quaver")
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	a, err := initialApp()
	if err != nil {
		fmt.Printf("Error initializing: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
