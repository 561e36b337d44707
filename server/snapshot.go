package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/chazu/madeup/store"
	"github.com/chazu/madeup/vm"
	"github.com/chazu/madeup/vm/dist"
)

// CBORContentType is the media type of snapshot responses.
const CBORContentType = "application/cbor"

// maxSourceBytes bounds the size of a posted program.
const maxSourceBytes = 1 << 20

// snapshotHandler serves run reports as canonical CBOR.
//
//	POST /snapshot          body is the program
//	GET  /snapshot/{name}   runs a stored sketch
//
// The query parameters mode, seed and time configure the run.
type snapshotHandler struct {
	worker   *RunWorker
	sketches *store.Store
}

func (h *snapshotHandler) post(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSourceBytes+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) > maxSourceBytes {
		http.Error(w, "program too large", http.StatusRequestEntityTooLarge)
		return
	}
	h.serve(w, r, string(body))
}

func (h *snapshotHandler) get(w http.ResponseWriter, r *http.Request) {
	if h.sketches == nil {
		http.Error(w, "no sketch store is configured", http.StatusNotFound)
		return
	}
	sk, err := h.sketches.Load(r.PathValue("name"))
	if errors.Is(err, store.ErrSketchNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.serve(w, r, sk.Source)
}

func (h *snapshotHandler) serve(w http.ResponseWriter, r *http.Request, source string) {
	opts, err := queryOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := h.worker.Interpret(r.Context(), source, opts...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	data, err := dist.MarshalReport(report)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", CBORContentType)
	w.Header().Set("X-Madeup-Run", report.RunID)
	w.Write(data)
}

func queryOptions(r *http.Request) ([]vm.Option, error) {
	q := r.URL.Query()
	var opts []vm.Option
	if s := q.Get("mode"); s != "" {
		mode, err := vm.ParseRenderMode(s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vm.WithRenderMode(mode))
	}
	if s := q.Get("seed"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vm.WithSeed(seed))
	}
	if s := q.Get("time"); s != "" {
		t, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vm.WithTime(t))
	}
	return opts, nil
}
