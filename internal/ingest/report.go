package ingest

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

// Request is the JSON object read from stdin.
type Request struct {
	Notebook string   `json:"notebook"`
	URLs     []string `json:"urls"`
}

// DecodeRequest reads a single Request. Both fields are required; urls may
// be an empty array but not null.
func DecodeRequest(r io.Reader) (Request, error) {
	var raw struct {
		Notebook *string  `json:"notebook"`
		URLs     []string `json:"urls"`
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Request{}, errors.Wrap(err, "read input")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Request{}, errors.New("empty input: expected {\"notebook\": ..., \"urls\": [...]}")
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Request{}, errors.Wrap(err, "invalid input JSON")
	}
	if raw.Notebook == nil {
		return Request{}, errors.New(`missing required field "notebook"`)
	}
	if *raw.Notebook == "" {
		return Request{}, errors.New(`field "notebook" must not be empty`)
	}
	if raw.URLs == nil {
		return Request{}, errors.New(`missing required field "urls"`)
	}
	return Request{Notebook: *raw.Notebook, URLs: raw.URLs}, nil
}

// Report is the JSON object written to stdout.
type Report struct {
	NotebookID    string   `json:"notebook_id"`
	NotebookTitle string   `json:"notebook_title"`
	Added         int      `json:"added"`
	Failed        int      `json:"failed"`
	Errors        []string `json:"errors"`
}

// NewReport summarizes a completed run.
func NewReport(nb Notebook, added []string, failures []Failure) Report {
	msgs := make([]string, 0, len(failures))
	for _, f := range failures {
		msgs = append(msgs, f.String())
	}
	return Report{
		NotebookID:    nb.ID,
		NotebookTitle: nb.Title,
		Added:         len(added),
		Failed:        len(failures),
		Errors:        msgs,
	}
}

// Degenerate is the report for a run that could not complete.
func Degenerate(err error) Report {
	return Report{Errors: []string{"Script error: " + err.Error()}}
}

// Encode writes r as one line of JSON.
func (r Report) Encode(w io.Writer) error {
	if r.Errors == nil {
		r.Errors = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}
