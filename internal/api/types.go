package api

import "strconv"

// SourceStatus is the processing state the service reports for a source.
type SourceStatus int

const (
	SourceStatusUnknown    SourceStatus = 0
	SourceStatusProcessing SourceStatus = 1
	SourceStatusReady      SourceStatus = 2
	SourceStatusError      SourceStatus = 3
	SourceStatusPreparing  SourceStatus = 5
)

func (s SourceStatus) String() string {
	switch s {
	case SourceStatusProcessing:
		return "processing"
	case SourceStatusReady:
		return "ready"
	case SourceStatusError:
		return "error"
	case SourceStatusPreparing:
		return "preparing"
	case SourceStatusUnknown:
		return "unknown"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Settled reports whether the service has finished with the source.
func (s SourceStatus) Settled() bool {
	return s == SourceStatusReady || s == SourceStatusError
}

// Notebook is a NotebookLM project.
type Notebook struct {
	ID      string
	Title   string
	Emoji   string
	Sources []Source
}

// Source returns the source with the given id.
func (n *Notebook) Source(id string) (Source, bool) {
	for _, s := range n.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}

// Source is a document attached to a notebook.
type Source struct {
	ID     string
	Title  string
	Status SourceStatus
}
