// Package playback drives the client-side story viewer: a timer-based state
// machine over author groups with auto-advance, pause/resume preserving the
// remaining window, explicit navigation, and fire-and-forget view marking.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rasel39/gigmarket/backend/pkg/storyclient"
)

// StoryDuration is how long each story is shown before auto-advancing
const StoryDuration = 5 * time.Second

var (
	// ErrNotViewing is returned by operations that need an open viewer
	ErrNotViewing = errors.New("no story open")
	// ErrNotOwner is returned when deleting someone else's story
	ErrNotOwner = errors.New("not the story author")
)

// ViewMarker records that the local viewer saw a story. Calls are
// fire-and-forget: failures are logged, never surfaced, and never block a
// state transition.
type ViewMarker interface {
	MarkViewed(ctx context.Context, storyID string) error
}

// StoryDeleter deletes one of the local viewer's own stories
type StoryDeleter interface {
	DeleteStory(ctx context.Context, storyID string) error
}

// Controller is the playback state machine. Idle until Open; while viewing
// it tracks (group, index, paused) and owns at most one live advance timer.
// All mutating methods first cancel any outstanding timer, so overlapping
// auto-advances cannot occur.
type Controller struct {
	mu      sync.Mutex
	clock   Clock
	sched   Scheduler
	marker  ViewMarker
	deleter StoryDeleter
	logger  *slog.Logger

	viewerID string
	duration time.Duration

	groups   []Group
	open     bool
	groupIdx int
	index    int
	paused   bool

	timer     Timer
	timerGen  uint64
	startedAt time.Time
	remaining time.Duration

	marked map[string]bool
}

// Options carries the controller's injectable collaborators. Zero values
// fall back to the system clock/scheduler and the default story duration.
type Options struct {
	Clock    Clock
	Sched    Scheduler
	Duration time.Duration
	Logger   *slog.Logger
}

// NewController creates a Controller for the given viewer
func NewController(viewerID string, marker ViewMarker, deleter StoryDeleter, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Sched == nil {
		opts.Sched = SystemScheduler()
	}
	if opts.Duration <= 0 {
		opts.Duration = StoryDuration
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		clock:    opts.Clock,
		sched:    opts.Sched,
		marker:   marker,
		deleter:  deleter,
		logger:   opts.Logger,
		viewerID: viewerID,
		duration: opts.Duration,
		marked:   make(map[string]bool),
	}
}

// SetFeed replaces the grouped feed. Ignored while a viewer is open so the
// group being played stays stable under background refetches.
func (c *Controller) SetFeed(groups []Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return
	}
	c.groups = groups
}

// Feed returns the current grouped feed
func (c *Controller) Feed() []Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.groups
}

// Open starts viewing the group at groupIdx from its first story
func (c *Controller) Open(groupIdx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if groupIdx < 0 || groupIdx >= len(c.groups) || len(c.groups[groupIdx].Stories) == 0 {
		return ErrNotViewing
	}
	c.open = true
	c.paused = false
	c.setPositionLocked(groupIdx, 0)
	return nil
}

// Close stops viewing unconditionally and cancels any pending timer
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// Next advances immediately, even while paused: next story of the current
// author, else the next author's first story, else Idle.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}
	c.advanceLocked()
}

// Prev steps back within the current author, or jumps to the previous
// author's last story. At the very first story it stays put.
func (c *Controller) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}
	switch {
	case c.index > 0:
		c.setPositionLocked(c.groupIdx, c.index-1)
	case c.groupIdx > 0:
		prev := c.groupIdx - 1
		c.setPositionLocked(prev, len(c.groups[prev].Stories)-1)
	}
}

// TogglePause flips the paused flag. Pausing suspends the timer keeping the
// remaining window; unpausing resumes with that remainder, not a restart.
func (c *Controller) TogglePause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}
	if !c.paused {
		c.paused = true
		elapsed := c.clock.Now().Sub(c.startedAt)
		c.remaining -= elapsed
		if c.remaining < 0 {
			c.remaining = 0
		}
		c.cancelTimerLocked()
		return
	}
	c.paused = false
	c.scheduleLocked(c.remaining)
}

// DeleteCurrent deletes the story being viewed; only its author may. The
// story is removed from the in-memory group on success: an emptied group
// closes the viewer, otherwise the index is clamped so an adjacent story
// shows.
func (c *Controller) DeleteCurrent(ctx context.Context) error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrNotViewing
	}
	group := &c.groups[c.groupIdx]
	story := group.Stories[c.index]
	if story.AuthorID != c.viewerID {
		c.mu.Unlock()
		return ErrNotOwner
	}
	c.mu.Unlock()

	// Deletion is the one call the viewer waits for; a failed delete leaves
	// the state machine untouched.
	if err := c.deleter.DeleteStory(ctx, story.ID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil
	}
	group = &c.groups[c.groupIdx]
	for i, s := range group.Stories {
		if s.ID == story.ID {
			group.Stories = append(group.Stories[:i], group.Stories[i+1:]...)
			break
		}
	}
	if len(group.Stories) == 0 {
		c.groups = append(c.groups[:c.groupIdx], c.groups[c.groupIdx+1:]...)
		c.closeLocked()
		return nil
	}
	if c.index >= len(group.Stories) {
		c.index = len(group.Stories) - 1
	}
	c.setPositionLocked(c.groupIdx, c.index)
	return nil
}

// Current returns the group and story being viewed
func (c *Controller) Current() (Group, *storyclient.Story, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return Group{}, nil, false
	}
	group := c.groups[c.groupIdx]
	story := group.Stories[c.index]
	return group, &story, true
}

// Index returns the position within the current group
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Paused reports whether playback is paused
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Viewing reports whether a story is open
func (c *Controller) Viewing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// setPositionLocked moves to (groupIdx, index), fires the view-marking side
// effect, and restarts the advance window.
func (c *Controller) setPositionLocked(groupIdx, index int) {
	c.groupIdx = groupIdx
	c.index = index
	c.markCurrentLocked()
	c.remaining = c.duration
	if c.paused {
		c.cancelTimerLocked()
		return
	}
	c.scheduleLocked(c.duration)
}

func (c *Controller) advanceLocked() {
	group := c.groups[c.groupIdx]
	switch {
	case c.index+1 < len(group.Stories):
		c.setPositionLocked(c.groupIdx, c.index+1)
	case c.groupIdx+1 < len(c.groups):
		c.setPositionLocked(c.groupIdx+1, 0)
	default:
		c.closeLocked()
	}
}

func (c *Controller) closeLocked() {
	c.open = false
	c.paused = false
	c.groupIdx = 0
	c.index = 0
	c.cancelTimerLocked()
}

// scheduleLocked arms the single advance timer. The generation counter lets
// a callback that raced a cancellation detect it is stale and do nothing.
func (c *Controller) scheduleLocked(d time.Duration) {
	c.cancelTimerLocked()
	gen := c.timerGen
	c.startedAt = c.clock.Now()
	c.remaining = d
	c.timer = c.sched.AfterFunc(d, func() { c.onTimer(gen) })
}

func (c *Controller) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

func (c *Controller) onTimer(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open || c.paused || gen != c.timerGen {
		return
	}
	c.advanceLocked()
}

// markCurrentLocked issues the fire-and-forget view mark for the story now
// displayed. The story ID is captured at issue time, so a late response
// applies to the story it was issued for regardless of where the viewer has
// navigated since. Self-views and repeats are skipped locally.
func (c *Controller) markCurrentLocked() {
	story := c.groups[c.groupIdx].Stories[c.index]
	if story.AuthorID == c.viewerID || c.marked[story.ID] {
		return
	}
	c.marked[story.ID] = true
	storyID := story.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.marker.MarkViewed(ctx, storyID); err != nil {
			c.logger.Warn("failed to mark story as viewed",
				slog.String("story_id", storyID),
				slog.String("error", err.Error()),
			)
		}
	}()
}
