package session

import (
	"fmt"
	"sync"
	"time"

	"ngfw-form/form"
	"ngfw-form/override"
	"ngfw-form/preset"
	"ngfw-form/uistate"
	"ngfw-form/uisync"
)

const defaultBacklog = 512

// EventType separates form changes from cosmetic ones.
type EventType string

const (
	EventField  EventType = "field"
	EventUI     EventType = "ui"
	EventDevice EventType = "device"
)

// Event is one change notification pushed to the page.
type Event struct {
	Seq    uint64          `json:"seq"`
	Type   EventType       `json:"type"`
	Field  *form.Change    `json:"field,omitempty"`
	UI     *uisync.Event   `json:"ui,omitempty"`
	Device preset.DeviceID `json:"device,omitempty"`
}

type Session struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	Device     preset.DeviceID `json:"device"`
	CreatedAt  time.Time       `json:"created_at"`
	LastActive time.Time       `json:"last_active"`
	Connected  bool            `json:"connected"`

	mu        sync.Mutex
	state     *form.State
	resolver  *preset.Resolver
	ui        *uisync.Layer
	overrides []override.Override

	backlog  *backlog
	outChan  chan Event
	kickChan chan struct{}
	outMu    sync.Mutex
	done     chan struct{}
	doneOnce sync.Once
}

// Summary is a point-in-time copy of a session's bookkeeping fields.
type Summary struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	Device     preset.DeviceID `json:"device"`
	CreatedAt  time.Time       `json:"created_at"`
	LastActive time.Time       `json:"last_active"`
	Connected  bool            `json:"connected"`
}

// View is the complete page state of a session.
type View struct {
	ID        string              `json:"id"`
	Device    preset.DeviceID     `json:"device"`
	Fields    form.Snapshot       `json:"fields"`
	UI        uisync.View         `json:"ui"`
	Overrides []override.Override `json:"overrides"`
	Seq       uint64              `json:"seq"`
}

// backlog is a bounded log of the most recent events, replayed to a client
// that reconnects.
type backlog struct {
	mu     sync.Mutex
	events []Event
	max    int
	seq    uint64
}

func newBacklog(max int) *backlog {
	if max <= 0 {
		max = defaultBacklog
	}
	return &backlog{max: max}
}

// Append numbers ev and stores it, dropping the oldest events beyond max.
func (b *backlog) Append(ev Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	ev.Seq = b.seq
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		excess := len(b.events) - b.max
		b.events = append([]Event(nil), b.events[excess:]...)
	}
	return ev
}

// Since returns the retained events with a sequence number above seq.
func (b *backlog) Since(seq uint64) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Event
	for _, ev := range b.events {
		if ev.Seq > seq {
			out = append(out, ev)
		}
	}
	return out
}

// Seq returns the number of the latest event.
func (b *backlog) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

func (s *Session) publish(ev Event) {
	ev = s.backlog.Append(ev)
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.outChan != nil {
		select {
		case s.outChan <- ev:
		default:
		}
	}
}

func (s *Session) publishField(c form.Change) {
	s.publish(Event{Type: EventField, Field: &c})
}

func (s *Session) publishUI(e uisync.Event) {
	s.publish(Event{Type: EventUI, UI: &e})
}

// SetClient registers a channel to receive live events. If a previous client
// is connected it is kicked: its kick channel is closed so the WebSocket
// handler can close that connection. Returns a kick channel that will be
// closed if this client is itself later displaced.
func (s *Session) SetClient(ch chan Event) <-chan struct{} {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.kickChan != nil {
		close(s.kickChan)
	}
	kick := make(chan struct{})
	s.kickChan = kick
	s.outChan = ch
	s.Connected = true
	return kick
}

// ClearClient is called when a connection ends. It only updates session state
// if ch is still the current owner (guards against a displaced connection
// clearing a newer one). It always closes ch so the pump goroutine exits.
func (s *Session) ClearClient(ch chan Event) {
	s.outMu.Lock()
	owned := s.outChan == ch
	if owned {
		s.outChan = nil
		s.Connected = false
		s.kickChan = nil
	}
	s.outMu.Unlock()
	close(ch)
}

// EventsSince returns the retained events after seq.
func (s *Session) EventsSince(seq uint64) []Event {
	return s.backlog.Since(seq)
}

// Done returns a channel that is closed when the session is killed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) close() {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.ui.Detach()
		s.mu.Unlock()
		close(s.done)
	})
}

// Summary copies the session's bookkeeping fields under their locks.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	sum := Summary{
		ID:         s.ID,
		ClientID:   s.ClientID,
		Device:     s.Device,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive,
	}
	s.mu.Unlock()
	s.outMu.Lock()
	sum.Connected = s.Connected
	s.outMu.Unlock()
	return sum
}

func (s *Session) touch() {
	s.LastActive = time.Now()
}

// View returns the complete page state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	return View{
		ID:        s.ID,
		Device:    s.Device,
		Fields:    s.state.Snapshot(),
		UI:        s.ui.View(),
		Overrides: append([]override.Override{}, s.overrides...),
		Seq:       s.backlog.Seq(),
	}
}

// SelectDevice re-resolves the form for a new device. URL overrides are a
// load-time feature and are not re-applied.
func (s *Session) SelectDevice(raw string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := preset.ParseDevice(raw)
	if err != nil {
		return View{}, err
	}
	if err := s.resolver.ApplyDevice(id); err != nil {
		return View{}, err
	}
	if err := s.ui.SelectDevice(id); err != nil {
		return View{}, err
	}
	s.Device = id
	s.touch()
	s.publish(Event{Type: EventDevice, Device: id})
	return s.view(), nil
}

// SetField writes a primary field by name.
func (s *Session) SetField(name string, v form.Value, p form.Patch) (form.ControlState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.state.Registry().ByName(name)
	if !ok {
		return form.ControlState{}, &form.UnknownFieldError{ID: form.FieldID(name)}
	}
	if err := s.state.SetWithPatch(id, v, p); err != nil {
		return form.ControlState{}, err
	}
	s.touch()
	return s.control(id), nil
}

// Toggle sets a checkbox, companions included, by name.
func (s *Session) Toggle(name string, checked bool) (form.ControlState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.state.Registry().ControlByName(name)
	if !ok {
		return form.ControlState{}, &form.UnknownFieldError{ID: form.FieldID(name)}
	}
	if err := s.state.Toggle(id, checked); err != nil {
		return form.ControlState{}, err
	}
	s.touch()
	return s.control(id), nil
}

// Step moves a slider one step up or down.
func (s *Session) Step(name string, up bool) (form.ControlState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.state.Registry().ByName(name)
	if !ok {
		return form.ControlState{}, &form.UnknownFieldError{ID: form.FieldID(name)}
	}
	var err error
	if up {
		_, err = s.state.StepUp(id)
	} else {
		_, err = s.state.StepDown(id)
	}
	if err != nil {
		return form.ControlState{}, err
	}
	s.touch()
	return s.control(id), nil
}

// ClickCard toggles the checkbox heading card name.
func (s *Session) ClickCard(name string) (uisync.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ui.ClickHeader(name); err != nil {
		return uisync.View{}, err
	}
	s.touch()
	return s.ui.View(), nil
}

// SetSection persists a section expand or collapse.
func (s *Session) SetSection(section string, st uistate.SectionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ui.SetSection(section, st); err != nil {
		return fmt.Errorf("section %s: %w", section, err)
	}
	s.touch()
	return nil
}

// AcknowledgeDisclaimer closes the warning modal.
func (s *Session) AcknowledgeDisclaimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.AcknowledgeDisclaimer()
	s.touch()
}

func (s *Session) control(id form.FieldID) form.ControlState {
	cs, _ := s.state.Snapshot().Get(id)
	return cs
}
