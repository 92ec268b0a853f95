package doctor

// The console has no stty state to restore.
func resetTerminal() {}
