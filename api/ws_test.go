package api_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ngfw-form/form"
	"ngfw-form/session"
)

type wsMsg struct {
	Type    string         `json:"type"`
	View    *session.View  `json:"view,omitempty"`
	Event   *session.Event `json:"event,omitempty"`
	Error   string         `json:"error,omitempty"`
	Name    string         `json:"name,omitempty"`
	Value   *form.Value    `json:"value,omitempty"`
	Checked bool           `json:"checked,omitempty"`
	Up      bool           `json:"up,omitempty"`
}

func dialWS(t *testing.T, srv *httptest.Server, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	return websocket.DefaultDialer.Dial(wsURL, nil)
}

func readMsg(t *testing.T, conn *websocket.Conn) wsMsg {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMsg
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

// readUntil reads messages until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, match func(wsMsg) bool) wsMsg {
	t.Helper()
	for i := 0; i < 200; i++ {
		if msg := readMsg(t, conn); match(msg) {
			return msg
		}
	}
	t.Fatal("expected message not received")
	return wsMsg{}
}

func TestWSNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	_, resp, err := dialWS(t, srv, "/api/forms/nonexistent/ws")
	if err == nil {
		t.Fatal("expected error connecting to nonexistent form")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", resp)
	}
}

func TestWSSnapshotOnConnect(t *testing.T) {
	srv, mgr := newTestServer(t)
	defer srv.Close()

	s, err := mgr.Create(session.CreateRequest{Device: "4max"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	conn, _, err := dialWS(t, srv, "/api/forms/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()

	msg := readMsg(t, conn)
	if msg.Type != "snapshot" || msg.View == nil {
		t.Fatalf("expected snapshot, got %q", msg.Type)
	}
	volt, _ := msg.View.Fields.Get(form.Volt)
	if volt.Value.String() != "60.01" {
		t.Fatalf("expected 4max volt 60.01, got %q", volt.Value.String())
	}
}

func TestWSToggleRoundTrip(t *testing.T) {
	srv, mgr := newTestServer(t)
	defer srv.Close()

	s, err := mgr.Create(session.CreateRequest{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	conn, _, err := dialWS(t, srv, "/api/forms/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()
	readMsg(t, conn) // snapshot

	if err := conn.WriteJSON(wsMsg{Type: "toggle", Name: "kml", Checked: true}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	msg := readUntil(t, conn, func(m wsMsg) bool {
		return m.Type == "event" && m.Event.Type == session.EventField &&
			m.Event.Field.ID == form.KMLL0 && m.Event.Field.Kind == form.EnabledChanged
	})
	if !msg.Event.Field.Enabled {
		t.Fatal("expected kml_l0 enabled after kml toggle")
	}
}

func TestWSDispatchError(t *testing.T) {
	srv, mgr := newTestServer(t)
	defer srv.Close()

	s, _ := mgr.Create(session.CreateRequest{})
	conn, _, err := dialWS(t, srv, "/api/forms/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()
	readMsg(t, conn)

	if err := conn.WriteJSON(wsMsg{Type: "toggle", Name: "bogus", Checked: true}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	msg := readUntil(t, conn, func(m wsMsg) bool { return m.Type == "error" })
	if msg.Name != "bogus" || msg.Error == "" {
		t.Fatalf("unexpected error message %+v", msg)
	}

	if err := conn.WriteJSON(wsMsg{Type: "resize"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	readUntil(t, conn, func(m wsMsg) bool { return m.Type == "error" })
}

func TestWSResumeFromSeq(t *testing.T) {
	srv, mgr := newTestServer(t)
	defer srv.Close()

	s, _ := mgr.Create(session.CreateRequest{})
	seq := s.View().Seq
	if _, err := s.Toggle("dpc", true); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	conn, _, err := dialWS(t, srv, "/api/forms/"+s.ID+"/ws?since="+strconv.FormatUint(seq, 10))
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()

	msg := readMsg(t, conn)
	if msg.Type != "event" || msg.Event.Seq != seq+1 {
		t.Fatalf("expected replay of seq %d, got %q %+v", seq+1, msg.Type, msg.Event)
	}
	if msg.Event.Field == nil || msg.Event.Field.ID != form.DPC {
		t.Fatalf("expected dpc change, got %+v", msg.Event)
	}
}

func TestWSClosedOnKill(t *testing.T) {
	srv, mgr := newTestServer(t)
	defer srv.Close()

	s, _ := mgr.Create(session.CreateRequest{})
	conn, _, err := dialWS(t, srv, "/api/forms/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()
	readMsg(t, conn)

	mgr.Kill(s.ID)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMsg
	if err := conn.ReadJSON(&msg); err != nil {
		// closed without a message is acceptable
		return
	}
	if msg.Type != "closed" {
		t.Fatalf("expected 'closed' message, got %q", msg.Type)
	}
}

func TestWSClientDisplacement(t *testing.T) {
	srv, mgr := newTestServer(t)
	defer srv.Close()

	s, _ := mgr.Create(session.CreateRequest{})

	conn1, _, err := dialWS(t, srv, "/api/forms/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("conn1 dial: %v", err)
	}
	defer conn1.Close()
	readMsg(t, conn1)

	conn2, _, err := dialWS(t, srv, "/api/forms/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("conn2 dial: %v", err)
	}
	defer conn2.Close()
	if msg := readMsg(t, conn2); msg.Type != "snapshot" {
		t.Fatalf("expected snapshot on conn2, got %q", msg.Type)
	}

	// conn1 is closed by the server without a "closed" message
	conn1.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMsg
	if err := conn1.ReadJSON(&msg); err == nil {
		t.Logf("conn1 received message after displacement: %q (not a failure)", msg.Type)
	}
}

func TestWSDisclaimerMessage(t *testing.T) {
	srv, mgr := newTestServer(t)
	defer srv.Close()

	s, _ := mgr.Create(session.CreateRequest{})
	conn, _, err := dialWS(t, srv, "/api/forms/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()
	readMsg(t, conn)

	if err := conn.WriteJSON(wsMsg{Type: "disclaimer"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	readUntil(t, conn, func(m wsMsg) bool {
		return m.Type == "event" && m.Event.Type == session.EventUI && m.Event.UI.Kind == "disclaimer"
	})
	if s.View().UI.Disclaimer {
		t.Fatal("disclaimer still visible")
	}
}
