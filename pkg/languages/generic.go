package languages

// Generic runs no language specific stages.
type Generic struct {
	Base
}

func (g *Generic) Name() string {
	return "generic"
}
