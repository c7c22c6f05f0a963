package event

// CommandEvent is fired when a command is logged by the runner.
type CommandEvent struct {
	Command string
	Echo    bool
	Assert  bool
	Display string
}

func (c *CommandEvent) EventType() string {
	return "command"
}

// FoldEvent is fired at the start and end of a fold.
type FoldEvent struct {
	Name  string
	Start bool
}

func (f *FoldEvent) EventType() string {
	return "fold"
}

// EnvEvent is fired when an environment variable is exported.
type EnvEvent struct {
	Key   string
	Value string
}

func (e *EnvEvent) EventType() string {
	return "env"
}

// FileEvent is fired for every filesystem change and directory change.
type FileEvent struct {
	Op   string
	Path string
	To   string
}

func (f *FileEvent) EventType() string {
	return "file"
}
