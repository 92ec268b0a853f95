package uistate

// Transition is the pure transition function of the window mode. It is total:
// every event yields a mode and a possibly empty, ordered effect list.
func Transition(mode Mode, ev Event) (Mode, []Effect) {
	switch ev.Kind {
	case EventStartRecording:
		// Capture always starts; the admin view keeps precedence on screen.
		if mode == ModeAdmin {
			return mode, []Effect{cancelReset, startCapture}
		}
		return ModeRecording, []Effect{resize(SizeRecording), cancelReset, startCapture}

	case EventStopRecording:
		if mode == ModeRecording {
			return mode, []Effect{stopCapture, scheduleReset}
		}
		return mode, []Effect{stopCapture}

	case EventWindowShown:
		return ModeLauncher, []Effect{clearQuery, resize(SizeLauncher), cancelReset}

	case EventEscape:
		if mode == ModeAdmin {
			return ModeLauncher, []Effect{resize(SizeLauncher)}
		}
		return mode, []Effect{hide}

	case EventOpenAdmin:
		return ModeAdmin, []Effect{resize(SizeAdmin)}

	case EventHide:
		return mode, []Effect{hide}

	case EventSearchResults:
		if mode != ModeLauncher {
			return mode, nil
		}
		if ev.Results > 0 {
			return mode, []Effect{resize(SizeLauncherExpanded)}
		}
		return mode, []Effect{resize(SizeLauncher)}

	case EventResetDue:
		return ModeLauncher, []Effect{resize(SizeLauncher), hide}
	}
	return mode, nil
}
