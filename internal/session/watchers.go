package session

import (
	"context"
	"log"
	"time"

	"github.com/lfade/quaver/internal/errmsg"
)

// The background tasks poll the external player instead of waiting for
// events because the player offers no push API. Each task only narrows the
// session toward what the player actually reports, so their relative order
// does not matter. All of them stop when their context is cancelled; a new
// play request retires the previous confirmer the same way.

// observeTime writes the player's position into the session snapshot. A
// failed poll means the player is not ready; it carries no information and
// the previous value stands.
func (c *Controller) observeTime(ctx context.Context) {
	ticker := time.NewTicker(c.opts.TimePollInterval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pos, err := c.player.Position()
		if err != nil {
			// Log once per failure streak, the poll fires twice a second.
			if !failing {
				log.Printf("session: position poll: %v", err)
				failing = true
			}
			continue
		}
		failing = false
		vol, volErr := c.player.Volume()

		c.mu.Lock()
		c.elapsed = pos
		if volErr == nil {
			c.volume = vol
		}
		c.mu.Unlock()
	}
}

// watchTrackEnd auto-advances the playlist when the current track ends.
// Debounce policy: a track only counts as ended after playback was observed
// at least once and the player then reported not-playing for
// EndIdleThreshold consecutive polls. Counting from poll count alone would
// skip tracks while the player is still buffering the first one.
func (c *Controller) watchTrackEnd(ctx context.Context) {
	ticker := time.NewTicker(c.opts.EndPollInterval)
	defer ticker.Stop()

	wasPlaying := false
	idleCount := 0
	failing := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !c.PlaylistMode() {
			wasPlaying = false
			idleCount = 0
			continue
		}

		playing, err := c.player.IsPlaying()
		if err != nil {
			// No information; do not count toward the idle threshold.
			if !failing {
				log.Printf("session: is-playing poll: %v", err)
				failing = true
			}
			continue
		}
		failing = false

		if playing {
			wasPlaying = true
			idleCount = 0
			continue
		}
		if !wasPlaying {
			continue
		}

		idleCount++
		if idleCount < c.opts.EndIdleThreshold {
			continue
		}

		// Only advance out of settled states; a Loading session means a
		// newer play request is already in flight.
		st := c.State()
		if st == StatePlaying || st == StateIdle {
			if err := c.Advance(Next); err != nil {
				c.publishError(errmsg.OpPlaylistAdvance, err)
			}
		}
		wasPlaying = false
		idleCount = 0
	}
}

// startConfirmer retires the previous play request's confirmer and starts a
// fresh one for the current request.
func (c *Controller) startConfirmer() {
	c.mu.Lock()
	if c.confirmCancel != nil {
		c.confirmCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.confirmCancel = cancel
	c.mu.Unlock()

	go c.confirmPlaying(ctx)
}

// confirmPlaying polls until the player reports playing, then transitions
// the session to Playing and snapshots duration and volume. If the player
// never starts within the idle budget the session falls back to Idle and
// the now-playing snapshot is cleared. Either way the task exits; it is not
// a persistent loop.
func (c *Controller) confirmPlaying(ctx context.Context) {
	ticker := time.NewTicker(c.opts.ConfirmPollInterval)
	defer ticker.Stop()

	idleCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		playing, err := c.player.IsPlaying()
		if err != nil {
			playing = false
		}

		if playing {
			duration := c.player.Duration()
			vol, volErr := c.player.Volume()

			c.mu.Lock()
			// A cancel between the poll and the lock means a newer request
			// owns the state now.
			if ctx.Err() != nil {
				c.mu.Unlock()
				return
			}
			c.state = StatePlaying
			c.duration = duration
			if volErr == nil {
				c.volume = vol
			}
			c.mu.Unlock()
			return
		}

		idleCount++
		if idleCount >= c.opts.ConfirmIdleBudget {
			c.mu.Lock()
			if ctx.Err() != nil {
				c.mu.Unlock()
				return
			}
			c.state = StateIdle
			c.current = nil
			c.elapsed = 0
			c.duration = unknownDuration
			c.mu.Unlock()
			return
		}
	}
}

// accumulateListenTime credits the profile with a poll interval of
// listening for every tick the player reports playing.
func (c *Controller) accumulateListenTime(ctx context.Context) {
	ticker := time.NewTicker(c.opts.ListenPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		playing, err := c.player.IsPlaying()
		if err != nil || !playing {
			continue
		}
		if err := c.profile.AddListenTime(c.opts.ListenPollInterval); err != nil {
			c.publishError(errmsg.OpProfileSave, err)
		}
	}
}
