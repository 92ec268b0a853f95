// Package uistate drives the launcher window mode from hotkey, window and
// keyboard events.
package uistate

import "time"

const DefaultResetDelay = 1500 * time.Millisecond

type Mode int

const (
	ModeLauncher Mode = iota
	ModeAdmin
	ModeRecording
)

func (m Mode) String() string {
	switch m {
	case ModeLauncher:
		return "launcher"
	case ModeAdmin:
		return "admin"
	case ModeRecording:
		return "recording"
	}
	return "unknown"
}

// Size names a window viewport variant.
type Size string

const (
	SizeLauncher         Size = "launcher"
	SizeLauncherExpanded Size = "launcher-expanded"
	SizeAdmin            Size = "admin"
	SizeRecording        Size = "recording"
)

type EventKind int

const (
	EventStartRecording EventKind = iota
	EventStopRecording
	EventWindowShown
	EventEscape
	EventOpenAdmin
	EventHide
	EventSearchResults
	EventResetDue
)

func (k EventKind) String() string {
	switch k {
	case EventStartRecording:
		return "start-recording"
	case EventStopRecording:
		return "stop-recording"
	case EventWindowShown:
		return "window-shown"
	case EventEscape:
		return "escape"
	case EventOpenAdmin:
		return "open-admin"
	case EventHide:
		return "hide"
	case EventSearchResults:
		return "search-results"
	case EventResetDue:
		return "reset-due"
	}
	return "unknown"
}

type Event struct {
	Kind    EventKind
	Results int    // EventSearchResults only
	token   uint64 // EventResetDue only
}

func StartRecording() Event     { return Event{Kind: EventStartRecording} }
func StopRecording() Event      { return Event{Kind: EventStopRecording} }
func WindowShown() Event        { return Event{Kind: EventWindowShown} }
func Escape() Event             { return Event{Kind: EventEscape} }
func OpenAdmin() Event          { return Event{Kind: EventOpenAdmin} }
func Hide() Event               { return Event{Kind: EventHide} }
func SearchResults(n int) Event { return Event{Kind: EventSearchResults, Results: n} }

type EffectKind int

const (
	EffectResize EffectKind = iota
	EffectHide
	EffectClearQuery
	EffectStartCapture
	EffectStopCapture
	EffectScheduleReset
	EffectCancelReset
)

func (k EffectKind) String() string {
	switch k {
	case EffectResize:
		return "resize"
	case EffectHide:
		return "hide"
	case EffectClearQuery:
		return "clear-query"
	case EffectStartCapture:
		return "start-capture"
	case EffectStopCapture:
		return "stop-capture"
	case EffectScheduleReset:
		return "schedule-reset"
	case EffectCancelReset:
		return "cancel-reset"
	}
	return "unknown"
}

type Effect struct {
	Kind EffectKind
	Size Size // EffectResize only
}

func (e Effect) String() string {
	if e.Kind == EffectResize {
		return "resize(" + string(e.Size) + ")"
	}
	return e.Kind.String()
}

func resize(s Size) Effect { return Effect{Kind: EffectResize, Size: s} }

var (
	hide          = Effect{Kind: EffectHide}
	clearQuery    = Effect{Kind: EffectClearQuery}
	startCapture  = Effect{Kind: EffectStartCapture}
	stopCapture   = Effect{Kind: EffectStopCapture}
	scheduleReset = Effect{Kind: EffectScheduleReset}
	cancelReset   = Effect{Kind: EffectCancelReset}
)
