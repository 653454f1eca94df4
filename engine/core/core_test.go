package core

import (
	"errors"
	"testing"
)

func TestIDPoolReusesLowestFreeID(t *testing.T) {
	p := NewIDPool()
	a := p.Acquire("a")
	b := p.Acquire("b")
	c := p.Acquire("c")
	if a != 0 || b != 1 || c != 2 {
		t.Fatalf("got ids %d %d %d", a, b, c)
	}
	if err := p.Release(b); err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 || p.Cap() != 3 {
		t.Fatalf("len=%d cap=%d", p.Len(), p.Cap())
	}
	if got := p.Acquire("d"); got != 1 {
		t.Errorf("expected released id 1 to be reused, got %d", got)
	}
	if p.Owner(1) != "d" {
		t.Errorf("owner = %v", p.Owner(1))
	}
}

func TestIDPoolReleaseErrors(t *testing.T) {
	p := NewIDPool()
	if err := p.Release(0); err == nil {
		t.Error("expected error releasing from empty pool")
	}
	id := p.Acquire(1)
	if err := p.Release(id); err != nil {
		t.Fatal(err)
	}
	if err := p.Release(id); err == nil {
		t.Error("expected error on double release")
	}
}

func TestEventFireStopsWhenHandled(t *testing.T) {
	defer EventShutdown()

	var calls []string
	EventRegister(EVENT_CODE_RESIZED, func(ctx EventContext) bool {
		calls = append(calls, "first")
		return true
	})
	EventRegister(EVENT_CODE_RESIZED, func(ctx EventContext) bool {
		calls = append(calls, "second")
		return false
	})

	handled := EventFire(EventContext{Type: EVENT_CODE_RESIZED, Data: &SystemEvent{WindowWidth: 1, WindowHeight: 1}})
	if !handled {
		t.Error("expected event to be handled")
	}
	if len(calls) != 1 || calls[0] != "first" {
		t.Errorf("calls = %v", calls)
	}
}

func TestEventUnregister(t *testing.T) {
	defer EventShutdown()

	fired := 0
	id := EventRegister(EVENT_CODE_MOUSE_WHEEL, func(ctx EventContext) bool {
		fired++
		return false
	})
	EventFire(EventContext{Type: EVENT_CODE_MOUSE_WHEEL})
	if !EventUnregister(EVENT_CODE_MOUSE_WHEEL, id) {
		t.Fatal("unregister returned false")
	}
	if EventUnregister(EVENT_CODE_MOUSE_WHEEL, id) {
		t.Error("second unregister should return false")
	}
	EventFire(EventContext{Type: EVENT_CODE_MOUSE_WHEEL})
	if fired != 1 {
		t.Errorf("fired %d times", fired)
	}
}

func TestInputProcessKeyFiresOnChange(t *testing.T) {
	defer EventShutdown()
	if err := InputInitialize(); err != nil {
		t.Fatal(err)
	}
	defer InputShutdown()

	pressed := 0
	EventRegister(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) bool {
		if ctx.Data.(*KeyEvent).KeyCode == KEY_SPACE {
			pressed++
		}
		return false
	})

	_ = InputProcessKey(KEY_SPACE, true)
	_ = InputProcessKey(KEY_SPACE, true)
	if pressed != 1 {
		t.Errorf("pressed fired %d times, want 1", pressed)
	}
	if !InputIsKeyDown(KEY_SPACE) {
		t.Error("space should be down")
	}
	_ = InputUpdate(0)
	_ = InputProcessKey(KEY_SPACE, false)
	if !InputWasKeyDown(KEY_SPACE) || InputIsKeyDown(KEY_SPACE) {
		t.Error("previous/current key state mismatch")
	}
}

func TestMetricsAverage(t *testing.T) {
	m := &MetricsState{}
	for i := 0; i < int(AVG_COUNT)*2; i++ {
		m.Update(0.01)
	}
	if m.MSavg < 9.99 || m.MSavg > 10.01 {
		t.Errorf("average = %v ms, want 10", m.MSavg)
	}
}

func TestSetLogLevel(t *testing.T) {
	if err := SetLogLevel("info"); err != nil {
		t.Fatal(err)
	}
	if err := SetLogLevel("loud"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("got %v, want ErrInvalidConfig", err)
	}
	_ = SetLogLevel("debug")
}
