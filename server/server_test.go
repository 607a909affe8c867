package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/sparques/irremote"
	"github.com/sparques/irremote/irtest"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *irtest.Recorder) {
	t.Helper()
	cfg := &irremote.RemoteConfig{
		Name:      "tv",
		Bits:      2,
		Header:    irremote.Bits{900, 450},
		One:       irremote.Bits{56, 169},
		Zero:      irremote.Bits{56, 56},
		Gap:       irremote.Bits{56, 4000},
		Repeat:    2,
		Frequency: irremote.Freq38Khz,
		Address:   0b10,
		Codes: []irremote.Code{
			{Signal: "power", Code: 0b01},
			{Signal: "mute", Code: 0b11},
			{Signal: "power", Code: 0b10},
		},
	}
	tx, rec := irtest.NewTxDevice()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(irremote.New(cfg, tx), log)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts, rec
}

func TestListSignals(t *testing.T) {
	_, ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/signals")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got []string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if want := []string{"power", "mute"}; !reflect.DeepEqual(got, want) {
		t.Errorf("signals = %v, want %v", got, want)
	}
}

func TestTransmit(t *testing.T) {
	_, ts, rec := newTestServer(t)
	resp, err := http.Post(ts.URL+"/signals/power", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var ev Event
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Signal != "power" || ev.Code != 0b01 || ev.Repeat != 2 || ev.Remote != "tv" {
		t.Errorf("event = %+v", ev)
	}
	// 2 frames of header + 2 address bits + 2 code bits + gap
	if got := len(rec.Pairs()); got != 12 {
		t.Errorf("pulses = %d, want 12", got)
	}
}

func TestTransmitUnknownSignal(t *testing.T) {
	_, ts, rec := newTestServer(t)
	resp, err := http.Post(ts.URL+"/signals/eject", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if rec.Calls() != 0 {
		t.Errorf("carrier calls = %d, want 0", rec.Calls())
	}
}

func TestTransmitCarrierFailure(t *testing.T) {
	_, ts, rec := newTestServer(t)
	rec.FailAt(1)
	resp, err := http.Post(ts.URL+"/signals/mute", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestTransmitMethodNotAllowed(t *testing.T) {
	_, ts, rec := newTestServer(t)
	resp, err := http.Get(ts.URL + "/signals/power")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
	if rec.Calls() != 0 {
		t.Errorf("carrier calls = %d, want 0", rec.Calls())
	}
}

func TestStream(t *testing.T) {
	s, ts, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/signals/stream"
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close(websocket.StatusNormalClosure, "")

	for s.listenerCount() == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("stream client never subscribed")
		case <-time.After(time.Millisecond):
		}
	}

	resp, err := http.Post(ts.URL+"/signals/mute", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	var ev Event
	if err := wsjson.Read(ctx, c, &ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Signal != "mute" || ev.Code != 0b11 || ev.Error != "" {
		t.Errorf("event = %+v", ev)
	}
}
