package models

import (
	"encoding/json"
	"errors"
)

// Event names an event kind. Connected and Disconnected are raised locally
// by the connection manager; the others arrive from Discord.
type Event string

const (
	EventReady               Event = "READY"
	EventConnected           Event = "CONNECTED"
	EventDisconnected        Event = "DISCONNECTED"
	EventError               Event = "ERROR"
	EventActivityJoin        Event = "ACTIVITY_JOIN"
	EventActivitySpectate    Event = "ACTIVITY_SPECTATE"
	EventActivityJoinRequest Event = "ACTIVITY_JOIN_REQUEST"
)

// Events lists every event kind.
func Events() []Event {
	return []Event{
		EventReady,
		EventConnected,
		EventDisconnected,
		EventError,
		EventActivityJoin,
		EventActivitySpectate,
		EventActivityJoinRequest,
	}
}

// Valid reports whether e is one of Events.
func (e Event) Valid() bool {
	for _, known := range Events() {
		if e == known {
			return true
		}
	}
	return false
}

// Ptr returns a pointer to a copy of e, for envelope fields.
func (e Event) Ptr() *Event {
	return &e
}

// EventData is the typed payload of an event.
type EventData interface {
	eventData()
}

// PartialUser is the subset of a Discord user sent with events.
type PartialUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	GlobalName    string `json:"global_name,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
}

// RPCServerConfiguration describes the Discord client that answered.
type RPCServerConfiguration struct {
	CDNHost     string `json:"cdn_host"`
	APIEndpoint string `json:"api_endpoint"`
	Environment string `json:"environment"`
}

type ReadyEvent struct {
	Version int                     `json:"v"`
	Config  *RPCServerConfiguration `json:"config,omitempty"`
	User    *PartialUser            `json:"user,omitempty"`
}

type ErrorEvent struct {
	Code    *int    `json:"code,omitempty"`
	Message *string `json:"message,omitempty"`
}

func (e ErrorEvent) Error() string {
	if e.Message != nil {
		return *e.Message
	}
	return "unknown discord error"
}

type ActivityJoinEvent struct {
	Secret string `json:"secret"`
}

type ActivitySpectateEvent struct {
	Secret string `json:"secret"`
}

type ActivityJoinRequestEvent struct {
	User PartialUser `json:"user"`
}

// UnknownData holds event data that did not match the expected shape.
type UnknownData struct {
	Raw json.RawMessage
}

// NoData is attached to events that carry nothing.
type NoData struct{}

func (ReadyEvent) eventData()               {}
func (ErrorEvent) eventData()               {}
func (ActivityJoinEvent) eventData()        {}
func (ActivitySpectateEvent) eventData()    {}
func (ActivityJoinRequestEvent) eventData() {}
func (UnknownData) eventData()              {}
func (NoData) eventData()                   {}

var errEmptyData = errors.New("empty event data")

// ParseData decodes raw into the data type of e. Data that does not decode
// degrades to UnknownData.
func (e Event) ParseData(raw json.RawMessage) EventData {
	switch e {
	case EventConnected, EventDisconnected:
		return NoData{}
	case EventReady:
		return parseAs[ReadyEvent](raw)
	case EventError:
		return parseAs[ErrorEvent](raw)
	case EventActivityJoin:
		return parseAs[ActivityJoinEvent](raw)
	case EventActivitySpectate:
		return parseAs[ActivitySpectateEvent](raw)
	case EventActivityJoinRequest:
		return parseAs[ActivityJoinRequestEvent](raw)
	default:
		return UnknownData{Raw: raw}
	}
}

func parseAs[T EventData](raw json.RawMessage) EventData {
	var v T
	if err := strictDecode(raw, &v); err != nil {
		return UnknownData{Raw: raw}
	}
	return v
}

func strictDecode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errEmptyData
	}
	return json.Unmarshal(raw, v)
}
