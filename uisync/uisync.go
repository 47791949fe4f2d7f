// Package uisync keeps the cosmetic page state (checked cards, collapsed
// sections, disclaimer, key-check help) in step with a form.
package uisync

import (
	"errors"
	"fmt"
	"sort"

	"ngfw-form/form"
	"ngfw-form/preset"
	"ngfw-form/uistate"
)

// ErrUnknownCard is returned for a card that has no checkbox in its header.
var ErrUnknownCard = errors.New("unknown card")

// ErrInvalidSection is returned for an empty section id.
var ErrInvalidSection = errors.New("invalid section id")

// DefaultSections are the collapsible sections of the form page.
var DefaultSections = []string{
	"section-general",
	"section-speed",
	"section-current",
	"section-brake",
	"section-battery",
	"section-lights",
	"section-security",
}

// Block selects which key-check explanation the page shows.
type Block string

const (
	BlockXiaomi  Block = "xiaomi"
	BlockNinebot Block = "ninebot"
)

// EventKind classifies layer events.
type EventKind string

const (
	CardChanged       EventKind = "card"
	SectionChanged    EventKind = "section"
	DisclaimerChanged EventKind = "disclaimer"
	BlockChanged      EventKind = "block"
)

// Event reports a cosmetic change to the rendering surface.
type Event struct {
	Kind    EventKind            `json:"kind"`
	Card    string               `json:"card,omitempty"`
	Checked bool                 `json:"checked,omitempty"`
	Section string               `json:"section,omitempty"`
	State   uistate.SectionState `json:"state,omitempty"`
	Visible bool                 `json:"visible,omitempty"`
	Block   Block                `json:"block,omitempty"`
}

// View is the full cosmetic state of one page.
type View struct {
	Cards      map[string]bool                 `json:"cards"`
	Sections   map[string]uistate.SectionState `json:"sections"`
	Disclaimer bool                            `json:"disclaimer"`
	Block      Block                           `json:"block,omitempty"`
}

// Options configures a Layer.
type Options struct {
	// Scope keys persisted section states, usually the browser client id.
	Scope    string
	Sections []string
	// Notify receives every event; may be nil.
	Notify func(Event)
}

// Layer mirrors one form. It owns no business state.
type Layer struct {
	state    *form.State
	store    uistate.Store
	scope    string
	notify   func(Event)
	cards    map[string]bool
	byCard   map[string]form.FieldID
	sections map[string]uistate.SectionState
	shown    bool
	block    Block
	cancel   func()
}

// Attach subscribes to state, evaluates every card once, restores section
// states from store and shows the disclaimer.
func Attach(state *form.State, store uistate.Store, opts Options) (*Layer, error) {
	if opts.Sections == nil {
		opts.Sections = DefaultSections
	}
	l := &Layer{
		state:    state,
		store:    store,
		scope:    opts.Scope,
		notify:   opts.Notify,
		cards:    make(map[string]bool),
		byCard:   make(map[string]form.FieldID),
		sections: make(map[string]uistate.SectionState, len(opts.Sections)),
		shown:    true,
	}
	reg := state.Registry()
	for _, id := range reg.Controls() {
		f, _ := reg.Lookup(id)
		if f.Kind == form.KindCheckbox {
			l.byCard[f.Name] = id
		}
	}
	l.syncCards()

	stored, err := store.All(l.scope)
	if err != nil {
		return nil, fmt.Errorf("restore sections: %w", err)
	}
	for _, sec := range opts.Sections {
		l.sections[sec] = uistate.Collapsed
	}
	for sec, st := range stored {
		l.sections[sec] = st
	}

	l.cancel = state.Subscribe(l.onChange)
	return l, nil
}

// Detach stops mirroring the form.
func (l *Layer) Detach() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Layer) emit(e Event) {
	if l.notify != nil {
		l.notify(e)
	}
}

func (l *Layer) onChange(c form.Change) {
	switch c.Kind {
	case form.Reset:
		l.syncCards()
	case form.ValueChanged:
		if _, ok := l.byCard[c.Name]; ok {
			l.setCard(c.Name, c.Value.Bool())
		}
	}
}

func (l *Layer) syncCards() {
	for name, id := range l.byCard {
		v, _ := l.state.Value(id)
		l.setCard(name, v.Bool())
	}
}

func (l *Layer) setCard(name string, checked bool) {
	prev, seen := l.cards[name]
	l.cards[name] = checked
	if !seen || prev != checked {
		l.emit(Event{Kind: CardChanged, Card: name, Checked: checked})
	}
}

// Card reports whether the card headed by checkbox name is styled checked.
func (l *Layer) Card(name string) (checked, ok bool) {
	checked, ok = l.cards[name]
	return checked, ok
}

// ClickHeader toggles the card's checkbox, as a click anywhere on the header
// does. Clicks on a disabled checkbox are ignored.
func (l *Layer) ClickHeader(name string) error {
	id, ok := l.byCard[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCard, name)
	}
	enabled, err := l.state.Enabled(id)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}
	v, err := l.state.Value(id)
	if err != nil {
		return err
	}
	return l.state.Toggle(id, !v.Bool())
}

// SetSection records a user expand or collapse and persists it.
func (l *Layer) SetSection(section string, st uistate.SectionState) error {
	if section == "" {
		return ErrInvalidSection
	}
	if err := l.store.Set(l.scope, section, st); err != nil {
		return err
	}
	l.sections[section] = st
	l.emit(Event{Kind: SectionChanged, Section: section, State: st})
	return nil
}

// Section returns the state of section; unknown sections are collapsed.
func (l *Layer) Section(section string) uistate.SectionState {
	if st, ok := l.sections[section]; ok {
		return st
	}
	return uistate.Collapsed
}

// DisclaimerVisible reports whether the warning modal is still open.
func (l *Layer) DisclaimerVisible() bool { return l.shown }

// AcknowledgeDisclaimer closes the warning modal.
func (l *Layer) AcknowledgeDisclaimer() {
	if !l.shown {
		return
	}
	l.shown = false
	l.emit(Event{Kind: DisclaimerChanged})
}

// SelectDevice picks the key-check explanation for the device family.
func (l *Layer) SelectDevice(id preset.DeviceID) error {
	b, err := KeyCheckBlock(id)
	if err != nil {
		return err
	}
	if b != l.block {
		l.block = b
		l.emit(Event{Kind: BlockChanged, Block: b})
	}
	return nil
}

// KeyCheckBlock maps a device to its key-check explanation.
func KeyCheckBlock(id preset.DeviceID) (Block, error) {
	fam, err := preset.FamilyOf(id)
	if err != nil {
		return "", err
	}
	switch fam {
	case preset.Xiaomi:
		return BlockXiaomi, nil
	case preset.Ninebot:
		return BlockNinebot, nil
	}
	return "", &preset.UnsupportedDeviceError{Device: string(id)}
}

// View copies the current cosmetic state.
func (l *Layer) View() View {
	v := View{
		Cards:      make(map[string]bool, len(l.cards)),
		Sections:   make(map[string]uistate.SectionState, len(l.sections)),
		Disclaimer: l.shown,
		Block:      l.block,
	}
	for k, c := range l.cards {
		v.Cards[k] = c
	}
	for k, s := range l.sections {
		v.Sections[k] = s
	}
	return v
}

// SectionIDs lists the known sections in sorted order.
func (l *Layer) SectionIDs() []string {
	ids := make([]string, 0, len(l.sections))
	for k := range l.sections {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}
