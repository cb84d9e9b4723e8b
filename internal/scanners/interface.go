package scanners

// Target is the host a command line is rendered for. Either field may be
// empty.
type Target struct {
	Domain string
	IP     string
}

// Templater renders the command line of one tool for a given option.
type Templater interface {
	Command(option string, target Target) string
	DefaultOption() string
}
