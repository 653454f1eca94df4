package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Mouse button pressed. Data: *MouseEvent
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04
	// Mouse button released. Data: *MouseEvent
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05
	// Mouse moved. Data: *MouseEvent with PosX/PosY
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06
	// Mouse wheel. Data: *MouseEvent with Scroll
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07
	// Resized/resolution changed from the OS. Data: *SystemEvent
	EVENT_CODE_RESIZED EventCode = 0x08

	MAX_EVENT_CODE EventCode = 0xFF
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

// Should return true if handled.
type FnOnEvent func(ctx EventContext) bool

// ListenerID identifies one registration, for EventUnregister.
type ListenerID uint64

type registeredEvent struct {
	id       ListenerID
	callback FnOnEvent
}

type eventSystemState struct {
	mu         sync.RWMutex
	nextID     ListenerID
	registered map[EventCode][]registeredEvent
}

var eventState = &eventSystemState{registered: map[EventCode][]registeredEvent{}}

// EventShutdown drops every registration.
func EventShutdown() {
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	eventState.registered = map[EventCode][]registeredEvent{}
}

/**
 * Register to listen for when events are sent with the provided code.
 * @returns an id to pass to EventUnregister.
 */
func EventRegister(code EventCode, onEvent FnOnEvent) ListenerID {
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	eventState.nextID++
	id := eventState.nextID
	eventState.registered[code] = append(eventState.registered[code], registeredEvent{id: id, callback: onEvent})
	return id
}

// EventUnregister removes a registration. Returns false when id was not registered for code.
func EventUnregister(code EventCode, id ListenerID) bool {
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	events := eventState.registered[code]
	for i, e := range events {
		if e.id == id {
			eventState.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * Listeners run on the caller's goroutine, in registration order.
 */
func EventFire(ctx EventContext) bool {
	eventState.mu.RLock()
	events := eventState.registered[ctx.Type]
	eventState.mu.RUnlock()

	for _, e := range events {
		if e.callback(ctx) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}
