package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	votingengine "dvoting/contexts/governance/voting-engine"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "dvoting/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	governance votingengine.Module
}

func New(governance votingengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		governance: governance,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the route mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/governance/v1/proposals", s.handleAddProposal)
	s.mux.HandleFunc("GET /api/governance/v1/proposals", s.handleListProposals)
	s.mux.HandleFunc("GET /api/governance/v1/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /api/governance/v1/voters", s.handleWhitelistVoter)
	s.mux.HandleFunc("GET /api/governance/v1/voters/{address}", s.handleGetVoter)
	s.mux.HandleFunc("POST /api/governance/v1/voting/start", s.handleStartVoting)
	s.mux.HandleFunc("POST /api/governance/v1/voting/close", s.handleCloseVoting)
	s.mux.HandleFunc("POST /api/governance/v1/voting/finalize", s.handleFinalize)
	s.mux.HandleFunc("POST /api/governance/v1/delegation", s.handleDelegate)
	s.mux.HandleFunc("DELETE /api/governance/v1/delegation", s.handleRemoveDelegate)
	s.mux.HandleFunc("POST /api/governance/v1/votes", s.handleVote)
	s.mux.HandleFunc("POST /api/governance/v1/pause", s.handlePause)
	s.mux.HandleFunc("POST /api/governance/v1/resume", s.handleResume)
	s.mux.HandleFunc("GET /api/governance/v1/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/governance/v1/winner", s.handleWinner)
	s.mux.HandleFunc("GET /api/governance/v1/results", s.handleResults)
	s.mux.HandleFunc("GET /api/governance/v1/quadratic", s.handleQuadraticPreview)
	s.mux.HandleFunc("GET /api/governance/v1/audit", s.handleAuditTrail)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
