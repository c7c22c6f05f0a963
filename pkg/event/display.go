package event

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// Renderer prints a readable trace of events.
type Renderer struct {
	// Out defaults to os.Stdout.
	Out io.Writer

	l    Listener
	once sync.Once
}

func (r *Renderer) WithContext(ctx context.Context) context.Context {
	r.once.Do(func() {
		r.l.AddHandler(r.handleEvent)
	})

	return SetContext(ctx, &r.l)
}

func (r *Renderer) handleEvent(event Event) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}

	switch ev := event.(type) {
	case *CommandEvent:
		switch {
		case ev.Display != "":
			fmt.Fprintf(out, "%s\n", ev.Display)
		case ev.Echo:
			fmt.Fprintf(out, "$ %s\n", ev.Command)
		default:
			fmt.Fprintf(out, "  %s\n", ev.Command)
		}
	case *FoldEvent:
		if ev.Start {
			fmt.Fprintf(out, "▸ %s\n", ev.Name)
		} else {
			fmt.Fprintf(out, "◂ %s\n", ev.Name)
		}
	case *EnvEvent:
		fmt.Fprintf(out, "  %s=%s\n", ev.Key, ev.Value)
	case *FileEvent:
		if ev.To != "" {
			fmt.Fprintf(out, "  [%s] %s => %s\n", ev.Op, ev.Path, ev.To)
		} else {
			fmt.Fprintf(out, "  [%s] %s\n", ev.Op, ev.Path)
		}
	}
}
