package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/room-controller/internal/logic"
	"github.com/sweeney/room-controller/internal/status"
)

type submitted struct {
	mu   sync.Mutex
	cmds []byte
	err  error
}

func (s *submitted) submit(ch byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.cmds = append(s.cmds, ch)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker, *submitted) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		TickMs:      10,
		HeartbeatMs: 900000,
		SerialPort:  "/dev/ttyAMA0",
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	sub := &submitted{}
	srv := New(":0", tr, sub.submit)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr, sub
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.Update(logic.State{DoorOpen: true, Duty: 100, Baseline: 20, Counts: logic.EventCounts{Opens: 5, Closes: 2}})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Door != "OPEN" {
		t.Errorf("Door: got %q, want OPEN", sj.Status.Door)
	}
	if sj.Status.LampPercent != 100 {
		t.Errorf("LampPercent: got %d, want 100", sj.Status.LampPercent)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Opens != 5 || sj.Status.Counts.Closes != 2 {
		t.Errorf("unexpected counts %+v", sj.Status.Counts)
	}
	if sj.Status.Config.SerialPort != "/dev/ttyAMA0" {
		t.Errorf("Config.SerialPort: got %q", sj.Status.Config.SerialPort)
	}
}

func TestJSONUnknownDoorBeforeStartup(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Door != "UNKNOWN" {
		t.Errorf("Door before startup: got %q, want UNKNOWN", sj.Status.Door)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.Update(logic.State{Duty: 50, Baseline: 50, RampActive: true, RampNext: 60})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"CLOSED", "50%", "active, next 60%"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestCommandEndpoint(t *testing.T) {
	ts, _, sub := newTestServer(t)

	for _, cmd := range []string{"o", "2", "x", "%3F"} {
		resp, err := http.Post(ts.URL+"/command/"+cmd, "text/plain", nil)
		if err != nil {
			t.Fatalf("POST /command/%s: %v", cmd, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			t.Errorf("POST /command/%s: got %d, want 202", cmd, resp.StatusCode)
		}
	}

	if string(sub.cmds) != "o2x?" {
		t.Errorf("submitted: got %q, want %q", sub.cmds, "o2x?")
	}
}

func TestCommandEndpointRejectsMultipleCharacters(t *testing.T) {
	ts, _, sub := newTestServer(t)

	resp, err := http.Post(ts.URL+"/command/open", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
	if len(sub.cmds) != 0 {
		t.Errorf("nothing should be submitted, got %q", sub.cmds)
	}
}

func TestCommandEndpointQueueFull(t *testing.T) {
	ts, _, sub := newTestServer(t)
	sub.err = errors.New("command queue full")

	resp, err := http.Post(ts.URL+"/command/s", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", resp.StatusCode)
	}
}

func TestCommandEndpointRequiresPost(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/command/o")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
}

func TestCommandEndpointDisabledWithoutSubmit(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{})
	srv := New(":0", tr, nil)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/command/o", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr, _ := newTestServer(t)

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Ready {
		t.Error("expected Ready=false initially")
	}

	tr.Update(logic.State{Duty: 70, Baseline: 70})
	tr.SetMQTTConnected(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if !sj2.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj2.Status.LampPercent != 70 {
		t.Errorf("LampPercent: got %d, want 70", sj2.Status.LampPercent)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
