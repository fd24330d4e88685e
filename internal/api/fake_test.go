package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// reply is what a fake RPC handler answers with. A non-zero Status is sent
// as the HTTP status; a non-zero Code is placed in the envelope instead of Data.
type reply struct {
	Data   interface{}
	Code   int
	Status int
}

type rpcHandler func(args []interface{}) reply

// fakeNotebookLM is a batchexecute server that dispatches on rpcids.
type fakeNotebookLM struct {
	t        *testing.T
	srv      *httptest.Server
	mu       sync.Mutex
	handlers map[string]rpcHandler
	calls    map[string][][]interface{}
	paths    []string
}

func newFake(t *testing.T) *fakeNotebookLM {
	t.Helper()
	f := &fakeNotebookLM{
		t:        t,
		handlers: make(map[string]rpcHandler),
		calls:    make(map[string][][]interface{}),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeNotebookLM) handle(id string, h rpcHandler) {
	f.mu.Lock()
	f.handlers[id] = h
	f.mu.Unlock()
}

func (f *fakeNotebookLM) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls[id])
}

func (f *fakeNotebookLM) lastArgs(id string) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := f.calls[id]
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

func (f *fakeNotebookLM) client(opts ...Option) *Client {
	opts = append([]Option{WithPollBackoff(5*time.Millisecond, 1.5, 20*time.Millisecond)}, opts...)
	return New(Config{
		AuthToken: "token",
		Cookies:   "SID=cookie",
		Host:      strings.TrimPrefix(f.srv.URL, "http://"),
		UseHTTP:   true,
	}, opts...)
}

func (f *fakeNotebookLM) serve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var envelope [][][]interface{}
	if err := json.Unmarshal([]byte(r.PostForm.Get("f.req")), &envelope); err != nil || len(envelope) == 0 || len(envelope[0]) == 0 {
		http.Error(w, "bad f.req", http.StatusBadRequest)
		return
	}
	call := envelope[0][0]
	id, _ := call[0].(string)
	argsJSON, _ := call[1].(string)
	var args []interface{}
	if argsJSON != "" && argsJSON != "null" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			http.Error(w, "bad args", http.StatusBadRequest)
			return
		}
	}

	f.mu.Lock()
	f.calls[id] = append(f.calls[id], args)
	f.paths = append(f.paths, r.URL.Query().Get("source-path"))
	h := f.handlers[id]
	f.mu.Unlock()

	if h == nil {
		f.t.Errorf("unexpected rpc %s", id)
		http.Error(w, "no handler", http.StatusNotImplemented)
		return
	}
	rep := h(args)
	if rep.Status != 0 && rep.Status != http.StatusOK {
		w.WriteHeader(rep.Status)
		return
	}

	var env []interface{}
	if rep.Code != 0 {
		env = []interface{}{"wrb.fr", id, nil, nil, nil, []int{rep.Code}, "generic"}
	} else {
		data, err := json.Marshal(rep.Data)
		if err != nil {
			f.t.Errorf("marshal reply: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		env = []interface{}{"wrb.fr", id, string(data), nil, nil, nil, "generic"}
	}
	body, _ := json.Marshal([]interface{}{env, []interface{}{"di", 42}})
	fmt.Fprintf(w, ")]}'\n%d\n%s\n", len(body), body)
}

// project builds a positional project array.
func project(title, id string, sources ...[]interface{}) []interface{} {
	srcs := make([]interface{}, 0, len(sources))
	for _, s := range sources {
		srcs = append(srcs, s)
	}
	return []interface{}{title, srcs, id, "📔"}
}

// source builds a positional source array with the given status.
func source(id, title string, status SourceStatus) []interface{} {
	return []interface{}{[]interface{}{id}, title, []interface{}{nil, 0}, []interface{}{nil, int(status)}}
}
