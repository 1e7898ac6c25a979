package eventbus

import "time"

// TypeConfigChanged is published when deployment configuration changes at
// runtime. The payload carries the changed fields; recognized keys are the
// Logo* constants below.
const TypeConfigChanged = "config.changed"

// Payload keys recognized by configuration-change subscribers.
const (
	KeyLogoPath   = "logo.path"
	KeyLogoHeight = "logo.height"
	KeyLogoWidth  = "logo.width"
)

// Event represents a notification published to the bus.
type Event struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// Listener is a function that handles an event.
type Listener func(Event)
