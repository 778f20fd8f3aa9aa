// Package player schedules note events against wall-clock deadlines and
// degrades gracefully when it falls behind. One goroutine owns all playback
// state; external control arrives as messages on a bounded channel, drained
// at well-defined points, so nothing outside the loop mutates the session.
package player

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/note"
)

// State is the playback state machine. Stopped is terminal; the only
// re-entry transition is Paused -> Playing.
type State int

const (
	Idle State = iota
	Armed
	Playing
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state-%d", int(s))
	}
}

// Sender delivers one wire message. Injected so tests and the CLI run
// without a hardware driver.
type Sender func(msg gomidi.Message) error

// Options tunes the scheduling loop. Zero values take the defaults.
type Options struct {
	// Lookahead is the window within which due events are dispatched. An
	// event is never sent earlier than its deadline minus this window.
	Lookahead time.Duration
	// Grace is how far past its deadline an event may run before the
	// late-drop policy is consulted.
	Grace  time.Duration
	Policy LateDropPolicy
}

const (
	DefaultLookahead = 30 * time.Millisecond
	DefaultGrace     = 15 * time.Millisecond

	// maxSleep bounds each wait so control messages stay responsive.
	maxSleep = 5 * time.Millisecond
)

// scheduled is one wire message with its deadline offsets. base is the pure
// tick-derived offset; at adds the active preset's swing and jitter.
type scheduled struct {
	pair     int
	tick     int
	onTick   int
	off      bool
	channel  uint8
	pitch    uint8
	velocity uint8
	base     time.Duration
	at       time.Duration
}

type soundKey struct {
	channel uint8
	pitch   uint8
}

type ctrlKind int

const (
	ctrlPause ctrlKind = iota
	ctrlResume
	ctrlStop
	ctrlPreset
)

type ctrlMsg struct {
	kind   ctrlKind
	preset Preset
}

// Session plays one armed clip. Not reusable after Stop.
type Session struct {
	send      Sender
	opts      Options
	telemetry *Telemetry

	mu      sync.Mutex
	state   State
	started bool

	ctrl chan ctrlMsg
	done chan struct{}

	// loop-owned after Play
	events        []scheduled
	idx           int
	seed          int64
	beatDur       time.Duration
	tickDur       time.Duration
	barTicks      int
	preset        Preset
	pendingPreset *Preset
	applyAtTick   int
	start         time.Time
	pausedAt      time.Time
	sounding      map[soundKey]int
	skip          map[int]bool
}

// NewSession builds an idle session around a sender.
func NewSession(send Sender, opts Options) *Session {
	if opts.Lookahead <= 0 {
		opts.Lookahead = DefaultLookahead
	}
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if len(opts.Policy.rules) == 0 {
		opts.Policy = DefaultPolicy()
	}
	return &Session{
		send:      send,
		opts:      opts,
		telemetry: &Telemetry{},
		ctrl:      make(chan ctrlMsg, 16),
		done:      make(chan struct{}),
		sounding:  make(map[soundKey]int),
		skip:      make(map[int]bool),
	}
}

// Telemetry exposes the degradation log.
func (s *Session) Telemetry() *Telemetry {
	return s.telemetry
}

// State returns the current playback state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Arm computes every deadline for the clip. Swing and humanize jitter are
// applied here, once per event; a retry or pause never re-randomizes them.
func (s *Session) Arm(program note.Program, events []note.Event, preset Preset) error {
	if st := s.State(); st != Idle {
		return fmt.Errorf("cannot arm from state %s", st)
	}
	if err := program.Validate(); err != nil {
		return err
	}
	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}

	s.beatDur = time.Minute / time.Duration(program.TempoBPM)
	s.tickDur = s.beatDur / time.Duration(program.TicksPerBeat)
	s.barTicks = program.BarTicks()
	s.seed = program.Seed
	s.preset = preset

	s.events = make([]scheduled, 0, len(events)*2)
	for i, ev := range events {
		on := scheduled{
			pair:     i,
			tick:     ev.Start,
			onTick:   ev.Start,
			channel:  uint8(ev.Channel),
			pitch:    uint8(ev.Pitch),
			velocity: uint8(ev.Velocity),
			base:     s.tickDur * time.Duration(ev.Start),
		}
		off := on
		off.off = true
		off.tick = ev.End()
		off.base = s.tickDur * time.Duration(ev.End())
		s.events = append(s.events, on, off)
	}
	s.retime(s.events)
	sortSchedule(s.events)

	s.setState(Armed)
	return nil
}

// retime applies the active preset's swing and jitter on top of each base
// offset. The adjustment is derived from the note-on's tick and pair index,
// and applied to both messages of the pair, so an off never precedes its on.
func (s *Session) retime(evs []scheduled) {
	for i := range evs {
		adj := s.swingDelay(evs[i].onTick) + s.jitter(evs[i].pair)
		at := evs[i].base + adj
		if at < 0 {
			at = 0
		}
		evs[i].at = at
	}
}

// swingDelay pushes offbeat eighths toward a triplet feel.
func (s *Session) swingDelay(onTick int) time.Duration {
	if s.preset.Swing <= 0 {
		return 0
	}
	tpb := int(s.beatDur / s.tickDur)
	if tpb <= 0 || onTick%tpb != tpb/2 {
		return 0
	}
	return time.Duration(s.preset.Swing * float64(s.beatDur) / 6)
}

// jitter draws the bounded humanize offset for a pair, deterministically
// from the program seed and pair index.
func (s *Session) jitter(pair int) time.Duration {
	if s.preset.HumanizeMax <= 0 {
		return 0
	}
	rng := rand.New(rand.NewSource(s.seed + int64(pair)*1000003 + 1))
	return time.Duration((rng.Float64()*2 - 1) * float64(s.preset.HumanizeMax))
}

func sortSchedule(evs []scheduled) {
	sort.SliceStable(evs, func(i, j int) bool {
		a, b := evs[i], evs[j]
		if a.at != b.at {
			return a.at < b.at
		}
		if a.off != b.off {
			return a.off
		}
		return a.pair < b.pair
	})
}

// Play starts the scheduling loop.
func (s *Session) Play() error {
	s.mu.Lock()
	if s.state != Armed {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot play from state %s", st)
	}
	s.state = Playing
	s.started = true
	s.mu.Unlock()

	s.start = time.Now()
	go s.run()
	return nil
}

// Pause suspends dispatch until Resume.
func (s *Session) Pause() error {
	return s.control(ctrlMsg{kind: ctrlPause})
}

// Resume re-enters Playing; remaining deadlines shift by the paused time.
func (s *Session) Resume() error {
	return s.control(ctrlMsg{kind: ctrlResume})
}

// Stop flushes note-offs for all sounding pitches and terminates. It is
// unconditional: the flush happens within one scheduling tick.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.started {
		already := s.state == Stopped
		s.state = Stopped
		s.mu.Unlock()
		if !already {
			close(s.done)
		}
		return nil
	}
	s.mu.Unlock()
	return s.control(ctrlMsg{kind: ctrlStop})
}

// SwitchPreset queues a preset change; it takes effect at the next bar
// boundary, never mid-bar.
func (s *Session) SwitchPreset(name string) error {
	p, ok := PresetByName(name)
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	return s.control(ctrlMsg{kind: ctrlPreset, preset: p})
}

// Wait blocks until the loop has exited.
func (s *Session) Wait() {
	<-s.done
}

func (s *Session) control(msg ctrlMsg) error {
	select {
	case <-s.done:
		return fmt.Errorf("session stopped")
	default:
	}
	select {
	case s.ctrl <- msg:
		return nil
	case <-s.done:
		return fmt.Errorf("session stopped")
	}
}

func (s *Session) run() {
	defer close(s.done)

	for {
		select {
		case msg := <-s.ctrl:
			if s.handleCtrl(msg) {
				return
			}
			continue
		default:
		}

		if s.State() == Paused {
			msg := <-s.ctrl
			if s.handleCtrl(msg) {
				return
			}
			continue
		}

		if s.idx >= len(s.events) {
			s.flushSounding()
			s.setState(Stopped)
			return
		}

		ev := s.events[s.idx]
		now := time.Now()

		s.maybeApplyPreset(now, ev)
		ev = s.events[s.idx]

		deadline := s.start.Add(ev.at)
		wait := deadline.Sub(now) - s.opts.Lookahead
		if wait > 0 {
			d := wait
			if d > maxSleep {
				d = maxSleep
			}
			timer := time.NewTimer(d)
			select {
			case msg := <-s.ctrl:
				timer.Stop()
				if s.handleCtrl(msg) {
					return
				}
			case <-timer.C:
			}
			continue
		}

		s.dispatch(ev, now, deadline)
		s.idx++
	}
}

// handleCtrl applies one control message; true means the loop must exit.
func (s *Session) handleCtrl(msg ctrlMsg) bool {
	switch msg.kind {
	case ctrlStop:
		s.flushSounding()
		s.setState(Stopped)
		return true
	case ctrlPause:
		if s.State() == Playing {
			s.pausedAt = time.Now()
			s.setState(Paused)
		}
	case ctrlResume:
		if s.State() == Paused {
			s.start = s.start.Add(time.Since(s.pausedAt))
			s.setState(Playing)
		}
	case ctrlPreset:
		p := msg.preset
		s.pendingPreset = &p
		s.applyAtTick = s.nextBarTick()
	}
	return false
}

// nextBarTick is the first bar boundary strictly after the playhead.
func (s *Session) nextBarTick() int {
	if s.tickDur <= 0 || s.barTicks <= 0 {
		return 0
	}
	curTick := int(time.Since(s.start) / s.tickDur)
	return (curTick/s.barTicks + 1) * s.barTicks
}

// maybeApplyPreset applies a queued preset switch once the next event sits
// on or past the queued bar boundary.
func (s *Session) maybeApplyPreset(now time.Time, next scheduled) {
	if s.pendingPreset == nil {
		return
	}
	if next.tick < s.applyAtTick && now.Sub(s.start) < s.tickDur*time.Duration(s.applyAtTick) {
		return
	}
	s.preset = *s.pendingPreset
	s.pendingPreset = nil
	rest := s.events[s.idx:]
	s.retime(rest)
	sortSchedule(rest)
}

func (s *Session) dispatch(ev scheduled, now time.Time, deadline time.Time) {
	if ev.off {
		if s.skip[ev.pair] {
			delete(s.skip, ev.pair)
			return
		}
		s.sendOff(ev)
		return
	}

	lateness := now.Sub(deadline)
	if lateness > s.opts.Grace {
		switch s.opts.Policy.Decide(ev, lateness) {
		case DropOrnament:
			s.skip[ev.pair] = true
			s.telemetry.recordDrop(DropRecord{
				At: now, Tick: ev.tick, Pitch: int(ev.pitch), Lateness: lateness,
			})
			return
		case DropCore:
			// the on never sounds; resolve the voice right away
			s.skip[ev.pair] = true
			_ = s.send(gomidi.NoteOff(ev.channel, ev.pitch))
			s.telemetry.recordDrop(DropRecord{
				At: now, Tick: ev.tick, Pitch: int(ev.pitch), Lateness: lateness, Core: true,
			})
			return
		case Dispatch:
		}
	}
	s.sendOn(ev)
}

func (s *Session) sendOn(ev scheduled) {
	if err := s.send(gomidi.NoteOn(ev.channel, ev.pitch, ev.velocity)); err != nil {
		return
	}
	s.sounding[soundKey{ev.channel, ev.pitch}]++
	s.telemetry.recordDispatch()
}

func (s *Session) sendOff(ev scheduled) {
	_ = s.send(gomidi.NoteOff(ev.channel, ev.pitch))
	key := soundKey{ev.channel, ev.pitch}
	if s.sounding[key] > 0 {
		s.sounding[key]--
		if s.sounding[key] == 0 {
			delete(s.sounding, key)
		}
	}
	s.telemetry.recordDispatch()
}

// flushSounding is the all-notes-off panic: one note-off per sounding
// pitch, unconditionally, before the session stops.
func (s *Session) flushSounding() {
	keys := make([]soundKey, 0, len(s.sounding))
	for key := range s.sounding {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].channel != keys[j].channel {
			return keys[i].channel < keys[j].channel
		}
		return keys[i].pitch < keys[j].pitch
	})
	for _, key := range keys {
		_ = s.send(gomidi.NoteOff(key.channel, key.pitch))
		delete(s.sounding, key)
	}
}
