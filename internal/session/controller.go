// Package session owns the "now playing" state machine and drives the
// external player. It is the only component allowed to mutate playback
// state; the UI and the background watchers read consistent snapshots
// through its accessors.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lfade/quaver/internal/errmsg"
	"github.com/lfade/quaver/internal/history"
	"github.com/lfade/quaver/internal/player"
	"github.com/lfade/quaver/internal/playlists"
	"github.com/lfade/quaver/internal/profile"
	"github.com/lfade/quaver/internal/resolver"
	"github.com/lfade/quaver/internal/songpage"
	"github.com/lfade/quaver/internal/track"
)

// ErrEmptyPlaylist is returned when playback of a playlist with no tracks is
// requested.
var ErrEmptyPlaylist = errors.New("session: playlist is empty")

const (
	unknownDuration = "00:00"
	// The player sometimes reports duration 00:00 right after confirm;
	// Status re-reads it a bounded number of times.
	maxDurationTries = 3
)

// Options tunes the polling cadence of the background tasks. The zero value
// gets production defaults; tests shrink the intervals.
type Options struct {
	// TimePollInterval is the cadence of the elapsed-time observer.
	TimePollInterval time.Duration
	// EndPollInterval is the cadence of the end-of-track watcher.
	EndPollInterval time.Duration
	// ConfirmPollInterval is the cadence of the per-play confirmer.
	ConfirmPollInterval time.Duration
	// ListenPollInterval is the cadence of the listening-time accumulator.
	ListenPollInterval time.Duration
	// ConfirmIdleBudget is how many consecutive negative polls the
	// confirmer tolerates before declaring the play attempt dead.
	ConfirmIdleBudget int
	// EndIdleThreshold is how many consecutive negative polls after
	// observed playback mean the track ended.
	EndIdleThreshold int
}

func (o Options) withDefaults() Options {
	if o.TimePollInterval <= 0 {
		o.TimePollInterval = 500 * time.Millisecond
	}
	if o.EndPollInterval <= 0 {
		o.EndPollInterval = time.Second
	}
	if o.ConfirmPollInterval <= 0 {
		o.ConfirmPollInterval = time.Second
	}
	if o.ListenPollInterval <= 0 {
		o.ListenPollInterval = time.Second
	}
	if o.ConfirmIdleBudget <= 0 {
		o.ConfirmIdleBudget = 10
	}
	if o.EndIdleThreshold <= 0 {
		o.EndIdleThreshold = 3
	}
	return o
}

// Deps are the controller's collaborators. Player and History are required;
// Profile and Playlists are optional features.
type Deps struct {
	Player    player.Interface
	History   *history.Store
	Profile   *profile.Store
	Playlists *playlists.Store
}

// Status is a consistent snapshot of the session for rendering.
type Status struct {
	Track        *track.Track
	State        State
	PlaylistMode bool
	Elapsed      int64 // seconds into the track
	Duration     string
	Volume       int64
}

// Controller is the playback session controller.
type Controller struct {
	mu sync.Mutex

	player    player.Interface
	history   *history.Store
	profile   *profile.Store
	playlists *playlists.Store

	current       *track.Track
	state         State
	playlistMode  bool
	playlist      *songpage.Store
	playlistIndex int

	elapsed       float64
	duration      string
	volume        int64
	durationTries int

	subs   []*Subscription
	subsMu sync.RWMutex

	ctx           context.Context
	cancel        context.CancelFunc
	confirmCancel context.CancelFunc

	opts Options
}

// New creates the controller and starts its long-lived background tasks
// (time observer, end-of-track watcher, listening accumulator). Close stops
// them.
func New(deps Deps, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		player:    deps.Player,
		history:   deps.History,
		profile:   deps.Profile,
		playlists: deps.Playlists,
		state:     StateIdle,
		duration:  unknownDuration,
		ctx:       ctx,
		cancel:    cancel,
		opts:      opts.withDefaults(),
	}

	go c.observeTime(ctx)
	go c.watchTrackEnd(ctx)
	if c.profile != nil {
		go c.accumulateListenTime(ctx)
	}
	return c
}

// PlayTrack resolves the track's URL, commands the player and records the
// play. playlistMode controls single-track looping: standalone playback
// loops the track, playlist playback lets it end naturally so the watcher
// can advance. A newer call supersedes an in-flight one; the shared state is
// last-writer-wins under the lock.
func (c *Controller) PlayTrack(t track.Track, playlistMode bool) error {
	url := resolver.WatchURL(t.ID)

	c.mu.Lock()
	// Retire the previous request's confirmer before touching shared state.
	// Left running, it would observe the old track still playing and
	// resurrect its status over this request's outcome, including a failed
	// one.
	if c.confirmCancel != nil {
		c.confirmCancel()
		c.confirmCancel = nil
	}
	c.state = StateLoading
	c.current = &t
	c.playlistMode = playlistMode
	c.elapsed = 0
	c.duration = unknownDuration
	c.durationTries = 0
	c.mu.Unlock()

	if err := c.player.Play(url); err != nil {
		c.setError()
		c.publishError(errmsg.OpPlay, err)
		return fmt.Errorf("session: play %s: %w", t.ID, err)
	}

	// Single tracks loop; playlist tracks must end so auto-advance fires.
	if err := c.player.SetLoop(!playlistMode); err != nil {
		c.setError()
		c.publishError(errmsg.OpSetLoop, err)
		return fmt.Errorf("session: set loop: %w", err)
	}

	if err := c.history.RecordPlay(t); err != nil {
		// Playback already started; surface the failure without tearing
		// the session down.
		c.publishError(errmsg.OpHistoryRecord, err)
	}
	if c.profile != nil {
		if err := c.profile.AddPlaySession(); err != nil {
			c.publishError(errmsg.OpProfileSave, err)
		}
	}

	c.publishNowPlaying(NowPlayingChange{Track: t, PlaylistMode: playlistMode})
	c.startConfirmer()
	return nil
}

// PlayPlaylist makes page the active playlist and starts playback at
// startIndex.
func (c *Controller) PlayPlaylist(page *songpage.Store, startIndex int) error {
	if page == nil || page.Len() == 0 {
		return ErrEmptyPlaylist
	}
	t, err := page.ByPosition(startIndex)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.playlist = page
	c.playlistIndex = startIndex
	c.mu.Unlock()

	return c.PlayTrack(t, true)
}

// Advance moves through the active playlist. Next wraps to the start after
// the last track; Previous clamps at the first. Without an active playlist,
// or with an empty one, it is a no-op.
func (c *Controller) Advance(dir Direction) error {
	c.mu.Lock()
	page := c.playlist
	if page == nil {
		c.mu.Unlock()
		return nil
	}
	length := page.Len()
	if length == 0 {
		c.mu.Unlock()
		return nil
	}
	idx := c.playlistIndex
	switch dir {
	case Next:
		idx = (idx + 1) % length
	case Previous:
		if idx > 0 {
			idx--
		}
	}
	c.playlistIndex = idx
	c.mu.Unlock()

	t, err := page.ByPosition(idx)
	if err != nil {
		return err
	}
	return c.PlayTrack(t, true)
}

// StopPlaylistMode drops the active playlist and tells listeners the
// playlist session ended. The current track keeps playing.
func (c *Controller) StopPlaylistMode() {
	c.mu.Lock()
	c.playlist = nil
	c.playlistMode = false
	c.mu.Unlock()

	c.subsMu.RLock()
	for _, sub := range c.subs {
		sub.sendEnded()
	}
	c.subsMu.RUnlock()
}

// AddToPlaylist stores t in the named user playlist and signals completion
// to subscribers.
func (c *Controller) AddToPlaylist(name string, t track.Track) error {
	if c.playlists == nil {
		return errors.New("session: no playlist store attached")
	}
	if err := c.playlists.AddTrack(name, t); err != nil {
		c.publishError(errmsg.OpPlaylistAddTrack, err)
		return err
	}

	c.subsMu.RLock()
	for _, sub := range c.subs {
		sub.sendAdded(AddedToPlaylist{Playlist: name, Track: t})
	}
	c.subsMu.RUnlock()
	return nil
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentTrack returns a copy of the current track, or nil.
func (c *Controller) CurrentTrack() *track.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	t := *c.current
	return &t
}

// PlaylistMode reports whether a playlist is driving playback.
func (c *Controller) PlaylistMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playlistMode
}

// PlaylistIndex returns the active playlist position. Only meaningful while
// PlaylistMode is true.
func (c *Controller) PlaylistIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playlistIndex
}

// Status returns a rendering snapshot. While playing with an unknown
// duration it re-polls the player a few times, because the player learns
// the track length slightly after playback starts.
func (c *Controller) Status() Status {
	c.mu.Lock()
	retry := c.state == StatePlaying && c.duration == unknownDuration && c.durationTries < maxDurationTries
	if retry {
		c.durationTries++
	}
	c.mu.Unlock()

	if retry {
		d := c.player.Duration()
		c.mu.Lock()
		if d != unknownDuration {
			c.duration = d
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{
		State:        c.state,
		PlaylistMode: c.playlistMode,
		Elapsed:      int64(c.elapsed),
		Duration:     c.duration,
		Volume:       c.volume,
	}
	if c.current != nil {
		t := *c.current
		st.Track = &t
	}
	return st
}

// Subscribe registers a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Close cancels every background task and closes subscriptions. The player
// and stores stay open; their owner closes them.
func (c *Controller) Close() error {
	c.cancel()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()
	return nil
}

func (c *Controller) setError() {
	c.mu.Lock()
	c.state = StateError
	c.mu.Unlock()
}

func (c *Controller) publishNowPlaying(e NowPlayingChange) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendNowPlaying(e)
	}
}

func (c *Controller) publishError(op errmsg.Op, err error) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendError(ErrorEvent{Op: op, Err: err})
	}
}
