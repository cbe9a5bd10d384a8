package session

const eventBufferSize = 4

// Subscription provides event channels for one subscriber. Receives are
// best-effort: the UI drains them non-blockingly at render time.
type Subscription struct {
	NowPlaying    <-chan NowPlayingChange
	PlaylistEnded <-chan PlaylistEnded
	Added         <-chan AddedToPlaylist
	Errors        <-chan ErrorEvent
	Done          <-chan struct{}

	// Internal write channels
	nowCh   chan NowPlayingChange
	endedCh chan PlaylistEnded
	addedCh chan AddedToPlaylist
	errorCh chan ErrorEvent
	doneCh  chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		nowCh:   make(chan NowPlayingChange, 1),
		endedCh: make(chan PlaylistEnded, 1),
		addedCh: make(chan AddedToPlaylist, eventBufferSize),
		errorCh: make(chan ErrorEvent, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.NowPlaying = s.nowCh
	s.PlaylistEnded = s.endedCh
	s.Added = s.addedCh
	s.Errors = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendNowPlaying is a single-slot mailbox: a newer change replaces an unread
// older one, so the UI always sees the latest track.
func (s *Subscription) sendNowPlaying(e NowPlayingChange) {
	for {
		select {
		case s.nowCh <- e:
			return
		default:
			select {
			case <-s.nowCh:
			default:
			}
		}
	}
}

// sendEnded sends a playlist-ended signal (non-blocking).
func (s *Subscription) sendEnded() {
	select {
	case s.endedCh <- PlaylistEnded{}:
	default:
	}
}

// sendAdded sends an add-to-playlist confirmation (non-blocking).
func (s *Subscription) sendAdded(e AddedToPlaylist) {
	select {
	case s.addedCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
