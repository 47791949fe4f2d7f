package api

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"ngfw-form/form"
	"ngfw-form/session"
	"ngfw-form/uistate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is used in both directions. Servers send snapshot, event, error
// and closed; clients send set, toggle, step, click, section and disclaimer.
type wsMessage struct {
	Type    string         `json:"type"`
	View    *session.View  `json:"view,omitempty"`
	Event   *session.Event `json:"event,omitempty"`
	Error   string         `json:"error,omitempty"`
	Name    string         `json:"name,omitempty"`
	Value   *form.Value    `json:"value,omitempty"`
	Patch   *bool          `json:"patch,omitempty"`
	Checked bool           `json:"checked,omitempty"`
	Up      bool           `json:"up,omitempty"`
	Section string         `json:"section,omitempty"`
	State   string         `json:"state,omitempty"`
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WS upgrade error", "err", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	outChan := make(chan session.Event, 256)
	kick := s.SetClient(outChan)
	defer s.ClearClient(outChan)

	// A client resuming from ?since=N gets the missed events; everyone else
	// starts from a full snapshot.
	if since, perr := strconv.ParseUint(r.URL.Query().Get("since"), 10, 64); perr == nil {
		for _, ev := range s.EventsSince(since) {
			ev := ev
			if err := writeMsg(wsMessage{Type: "event", Event: &ev}); err != nil {
				h.logger.Warn("WS backlog replay error", "session", s.ID, "err", err)
				return
			}
		}
	} else {
		view := s.View()
		if err := writeMsg(wsMessage{Type: "snapshot", View: &view}); err != nil {
			h.logger.Warn("WS snapshot error", "session", s.ID, "err", err)
			return
		}
	}

	// Goroutine: pump live form events to client.
	// Exits when ClearClient closes outChan.
	go func() {
		for ev := range outChan {
			ev := ev
			if err := writeMsg(wsMessage{Type: "event", Event: &ev}); err != nil {
				return
			}
		}
	}()

	// Goroutine: watch for session end or displacement and close the connection
	// so ReadJSON below unblocks immediately.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-s.Done():
			writeMsg(wsMessage{Type: "closed"}) //nolint:errcheck
			conn.Close()
		case <-kick:
			// Displaced by a newer page. No "closed" message: the form lives on.
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	// Main loop: read client messages.
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			// Client disconnected, or conn was closed by the done-watcher above.
			// Either way the session keeps running.
			return
		}
		if err := h.dispatch(s, msg); err != nil {
			writeMsg(wsMessage{Type: "error", Name: msg.Name, Error: err.Error()}) //nolint:errcheck
		}
	}
}

// dispatch applies one client message. Resulting changes reach the client
// through the event pump.
func (h *handler) dispatch(s *session.Session, msg wsMessage) error {
	var err error
	switch msg.Type {
	case "set":
		if msg.Value == nil {
			return errMissingValue
		}
		_, err = s.SetField(msg.Name, *msg.Value, patchFlag(msg.Patch))
	case "toggle":
		_, err = s.Toggle(msg.Name, msg.Checked)
	case "step":
		_, err = s.Step(msg.Name, msg.Up)
	case "click":
		_, err = s.ClickCard(msg.Name)
	case "section":
		var st uistate.SectionState
		if st, err = uistate.ParseSectionState(msg.State); err == nil {
			err = s.SetSection(msg.Section, st)
		}
	case "disclaimer":
		s.AcknowledgeDisclaimer()
	default:
		err = errUnknownMessage
	}
	return err
}
