// Package server exposes the transpiler over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/jasp-lang/jasp/internal/cli"
	"github.com/jasp-lang/jasp/internal/config"
	jerrors "github.com/jasp-lang/jasp/internal/errors"
	"github.com/jasp-lang/jasp/internal/interop"
	"github.com/jasp-lang/jasp/internal/position"
	"github.com/jasp-lang/jasp/internal/transpiler"
)

// MaxBodyBytes limits request bodies.
const MaxBodyBytes = 1 << 20

// KindBadRequest marks requests that never reached the pipeline.
const KindBadRequest = "BAD_REQUEST"

// Server handles transpile requests. Every request compiles with its own
// environment, so handlers run concurrently without coordination.
type Server struct {
	config     *config.Config
	logger     *cli.Logger
	transpiler *transpiler.Transpiler
	mux        *http.ServeMux
}

// New creates a Server for cfg.
func New(cfg *config.Config, logger *cli.Logger) *Server {
	if logger == nil {
		logger = cli.NewLogger(false, false)
	}
	s := &Server{
		config:     cfg,
		logger:     logger,
		transpiler: transpiler.New(cfg.CompilerOptions(logger)),
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /transpile", s.handleTranspile)
	s.mux.HandleFunc("POST /compile", s.handleCompile)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Info("%s %s %s %d %s", r.Proto, r.Method, r.URL.Path, rec.status, time.Since(start))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleTranspile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeBadRequest(w, err, nil)
		return
	}

	out, err := s.transpiler.Transpile(string(body), r.URL.Query().Get("filename"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeBadRequest(w, err, nil)
		return
	}
	host, err := interop.DecodeJSONBytes(body)
	if err != nil {
		writeBadRequest(w, err, body)
		return
	}

	out, err := s.transpiler.CompileHost(host)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body, _ := json.Marshal(map[string]string{"status": "ok", "version": cli.Version})
	writeJSON(w, http.StatusOK, body)
}

// ErrorBody is the JSON shape of a failed request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure.
type ErrorDetail struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Span    *position.Span `json:"span"`
}

// writeBadRequest reports a request that could not be read or decoded. A
// JSON syntax error in body is located by line and column.
func writeBadRequest(w http.ResponseWriter, err error, body []byte) {
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	detail := ErrorDetail{Kind: KindBadRequest, Message: err.Error()}

	var syntax *json.SyntaxError
	if errors.As(err, &syntax) && body != nil {
		// Offset counts the offending byte.
		pos := position.NewSourceFile("", string(body)).PositionFromOffset(max(0, int(syntax.Offset)-1))
		if pos.IsValid() {
			detail.Span = &position.Span{Start: pos, End: pos}
		}
	}
	writeDetail(w, status, detail)
}

func writeError(w http.ResponseWriter, status int, err error) {
	detail := ErrorDetail{Kind: "ERROR", Message: err.Error()}
	if se, ok := jerrors.As(err); ok {
		detail.Kind = string(se.Kind)
		detail.Message = se.Message
		if se.Cause != nil {
			detail.Message += ": " + se.Cause.Error()
		}
		if se.Span.IsValid() {
			span := se.Span
			detail.Span = &span
		}
	}
	writeDetail(w, status, detail)
}

func writeDetail(w http.ResponseWriter, status int, detail ErrorDetail) {
	body, err := json.Marshal(ErrorBody{Error: detail})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}
