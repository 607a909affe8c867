package irremote_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sparques/irremote"
	"github.com/sparques/irremote/irtest"
)

var (
	h = irremote.Bits{900, 450}
	o = irremote.Bits{56, 169}
	z = irremote.Bits{56, 56}
	g = irremote.Bits{56, 4000}
)

func testConfig() *irremote.RemoteConfig {
	return &irremote.RemoteConfig{
		Name:      "tv",
		Bits:      2,
		Header:    h,
		One:       o,
		Zero:      z,
		Gap:       g,
		Repeat:    1,
		Frequency: irremote.Freq38Khz,
		Address:   0b10,
		Codes: []irremote.Code{
			{Signal: "power", Code: 0b01},
			{Signal: "mute", Code: 0b11},
		},
	}
}

func TestTransmitEndToEnd(t *testing.T) {
	tx, rec := irtest.NewTxDevice()
	r := irremote.New(testConfig(), tx)

	if err := r.Transmit("power"); err != nil {
		t.Fatalf("Transmit: %v", err)
	}
	want := []irremote.TimePair{h.Pair(), o.Pair(), z.Pair(), z.Pair(), o.Pair(), g.Pair()}
	if got := rec.Pairs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("pulses = %v, want %v", got, want)
	}
	if got := rec.Calls(); got != 2*len(want) {
		t.Errorf("carrier calls = %d, want %d", got, 2*len(want))
	}
}

func TestTransmitRepeat(t *testing.T) {
	cfg := testConfig()
	cfg.Repeat = 3
	tx, rec := irtest.NewTxDevice()
	r := irremote.New(cfg, tx)

	if err := r.Transmit("mute"); err != nil {
		t.Fatalf("Transmit: %v", err)
	}
	frame := []irremote.TimePair{h.Pair(), o.Pair(), z.Pair(), o.Pair(), o.Pair(), g.Pair()}
	var want []irremote.TimePair
	for i := 0; i < 3; i++ {
		want = append(want, frame...)
	}
	if got := rec.Pairs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("pulses = %v, want %v", got, want)
	}
}

func TestLookupFirstMatchWins(t *testing.T) {
	cfg := testConfig()
	cfg.Codes = []irremote.Code{{"a", 1}, {"b", 2}, {"a", 3}}
	r := irremote.New(cfg, nil)

	code, err := r.Lookup("a")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if code != 1 {
		t.Errorf("Lookup(a) = %d, want 1", code)
	}
	if got, want := r.Signals(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Signals() = %v, want %v", got, want)
	}
}

func TestLookupIsCaseSensitive(t *testing.T) {
	r := irremote.New(testConfig(), nil)
	if _, err := r.Lookup("Power"); !errors.Is(err, irremote.ErrSignalNotFound) {
		t.Fatalf("Lookup(Power) error = %v, want ErrSignalNotFound", err)
	}
}

func TestTransmitUnknownSignal(t *testing.T) {
	tx, rec := irtest.NewTxDevice()
	r := irremote.New(testConfig(), tx)

	for _, name := range []string{"volume_up", ""} {
		err := r.Transmit(name)
		if !errors.Is(err, irremote.ErrSignalNotFound) {
			t.Fatalf("Transmit(%q) error = %v, want ErrSignalNotFound", name, err)
		}
		var nf *irremote.SignalNotFoundError
		if !errors.As(err, &nf) || nf.Signal != name {
			t.Fatalf("Transmit(%q) error = %#v, want SignalNotFoundError naming the signal", name, err)
		}
	}
	if rec.Calls() != 0 {
		t.Fatalf("carrier calls = %d, want 0", rec.Calls())
	}
}

func TestTransmitAbortsOnCarrierFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Repeat = 2
	tx, rec := irtest.NewTxDevice()
	rec.FailAt(4) // disable of the first address bit
	r := irremote.New(cfg, tx)

	err := r.Transmit("power")
	if !errors.Is(err, irremote.ErrPWMIO) {
		t.Fatalf("Transmit error = %v, want ErrPWMIO", err)
	}
	if !errors.Is(err, irtest.ErrInjected) {
		t.Fatalf("Transmit error = %v, want it to wrap the carrier error", err)
	}
	var pe *irremote.PWMError
	if !errors.As(err, &pe) || pe.Op != "disable" {
		t.Fatalf("Transmit error = %#v, want PWMError for disable", err)
	}
	if rec.Calls() != 4 {
		t.Fatalf("carrier calls = %d, want no calls after the failure", rec.Calls())
	}
}

func TestFrames(t *testing.T) {
	cfg := testConfig()
	cfg.Repeat = 2
	r := irremote.New(cfg, nil)

	fms, err := r.Frames("power")
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(fms) != 2 {
		t.Fatalf("len(Frames) = %d, want 2", len(fms))
	}
	f, ok := fms[0].(irremote.Frame)
	if !ok {
		t.Fatalf("frame type %T, want irremote.Frame", fms[0])
	}
	if f.Code != 0b01 || f.Address != 0b10 {
		t.Errorf("frame = %+v", f)
	}
	if _, err := r.Frames("nope"); !errors.Is(err, irremote.ErrSignalNotFound) {
		t.Errorf("Frames(nope) error = %v", err)
	}
}

func TestTxDeviceClose(t *testing.T) {
	tx, rec := irtest.NewTxDevice()
	if err := tx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !rec.Closed() {
		t.Fatal("carrier not closed")
	}
}

func TestRecorderPairsTrailingOff(t *testing.T) {
	rec := irtest.NewRecorder()
	tx := irremote.NewTxDevice(rec, irremote.WithSleeper(rec))
	pair := irremote.TimePair{100 * time.Microsecond, 200 * time.Microsecond}
	if err := tx.SendPair(pair); err != nil {
		t.Fatalf("SendPair: %v", err)
	}
	if got := rec.Pairs(); len(got) != 1 || got[0] != pair {
		t.Fatalf("Pairs() = %v, want [%v]", got, pair)
	}
}
