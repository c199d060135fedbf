// Package web serves the bench status page, the status document and a
// read-only dump of the host register map.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/sweeney/prb-computer/internal/gateway"
	"github.com/sweeney/prb-computer/internal/status"
)

// registerOrder lists the host-readable registers in opcode order.
var registerOrder = []gateway.Opcode{
	gateway.OpIsWokenUp,
	gateway.OpFsmState,
	gateway.OpOxidizerInletP,
	gateway.OpOxidizerInletT,
	gateway.OpEngineInletP,
	gateway.OpEngineInletT,
	gateway.OpChamberP,
	gateway.OpChamberT,
	gateway.OpValvesState,
	gateway.OpSpecificImpulse,
}

// RegisterJSON is one register as the host would read it over the link.
type RegisterJSON struct {
	Opcode string `json:"opcode"`
	Name   string `json:"name"`
	Raw    string `json:"raw"`
}

// Server serves bench state from a status tracker. It never writes to the
// sequencer; commands go through the gateway.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server listening on addr.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.readOnly(s.handlePage))
	mux.HandleFunc("/index.json", s.readOnly(s.handleStatus))
	mux.HandleFunc("/bench.json", s.readOnly(s.handleBench))
	mux.HandleFunc("/registers.json", s.readOnly(s.handleRegisters))

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown stops the server, waiting for active requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) readOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "read-only", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, status.FormatJSON(s.tracker.Snapshot()))
}

func (s *Server) handleBench(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(status.Bench(s.tracker.Latest()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, data)
}

func (s *Server) handleRegisters(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Latest()
	regs := make([]RegisterJSON, 0, len(registerOrder))
	for _, op := range registerOrder {
		resp, ok := gateway.Encode(op, snap)
		if !ok {
			continue
		}
		regs = append(regs, RegisterJSON{
			Opcode: fmt.Sprintf("0x%02X", byte(op)),
			Name:   op.String(),
			Raw:    fmt.Sprintf("% X", resp[:]),
		})
	}
	data, err := json.Marshal(regs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, data)
}

func writeJSON(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		log.Printf("web: write response: %v", err)
	}
}
