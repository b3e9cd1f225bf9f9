package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	governanceerrors "dvoting/contexts/governance/voting-engine/domain/errors"
	governancehttp "dvoting/contexts/governance/voting-engine/transport/http"
)

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{Code: code, Message: message})
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, governanceerrors.ErrUnauthorized):
		writeGovernanceError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, governanceerrors.ErrNotWhitelisted):
		writeGovernanceError(w, http.StatusForbidden, "not_whitelisted", err.Error())
	case errors.Is(err, governanceerrors.ErrPaused):
		writeGovernanceError(w, http.StatusConflict, "election_paused", err.Error())
	case errors.Is(err, governanceerrors.ErrWrongPhase):
		writeGovernanceError(w, http.StatusConflict, "wrong_phase", err.Error())
	case errors.Is(err, governanceerrors.ErrAlreadyVoted):
		writeGovernanceError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, governanceerrors.ErrNoVotingPower):
		writeGovernanceError(w, http.StatusConflict, "no_voting_power", err.Error())
	case errors.Is(err, governanceerrors.ErrNoDelegation):
		writeGovernanceError(w, http.StatusConflict, "no_delegation", err.Error())
	case errors.Is(err, governanceerrors.ErrVotingWindowNotOpen):
		writeGovernanceError(w, http.StatusConflict, "voting_window_not_open", err.Error())
	case errors.Is(err, governanceerrors.ErrVotingWindowNotExpired):
		writeGovernanceError(w, http.StatusConflict, "voting_window_not_expired", err.Error())
	case errors.Is(err, governanceerrors.ErrSelfDelegation):
		writeGovernanceError(w, http.StatusBadRequest, "self_delegation", err.Error())
	case errors.Is(err, governanceerrors.ErrInvalidTarget):
		writeGovernanceError(w, http.StatusBadRequest, "invalid_target", err.Error())
	case errors.Is(err, governanceerrors.ErrInvalidArgument):
		writeGovernanceError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// requireCallerAddress pulls the authenticated identity every mutating
// operation is attributed to. The identity provider upstream is trusted;
// the engine only needs the address.
func requireCallerAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get("X-Caller-Address"))
	if caller == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return "", false
	}
	return caller, true
}

func (s *Server) handleAddProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCallerAddress(w, r)
	if !ok {
		return
	}
	var req governancehttp.AddProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	resp, err := s.governance.Handler.AddProposalHandler(r.Context(), caller, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListProposalsHandler(r.Context())
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, err := strconv.Atoi(r.PathValue("proposal_id"))
	if err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal_id must be an integer")
		return
	}
	resp, err := s.governance.Handler.GetProposalHandler(r.Context(), proposalID)
	if err != nil {
		writeGovernanceError(w, http.StatusNotFound, "proposal_not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWhitelistVoter(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCallerAddress(w, r)
	if !ok {
		return
	}
	var req governancehttp.WhitelistVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	if err := s.governance.Handler.WhitelistVoterHandler(r.Context(), caller, req); err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetVoter(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.PathValue("address"))
	if address == "" {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_address", "address is required")
		return
	}
	writeJSON(w, http.StatusOK, s.governance.Handler.GetVoterHandler(r.Context(), address))
}

func (s *Server) handleStartVoting(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCallerAddress(w, r)
	if !ok {
		return
	}
	var req governancehttp.StartVotingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	if err := s.governance.Handler.StartVotingHandler(r.Context(), caller, req); err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCloseVoting(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCallerAddress(w, r)
	if !ok {
		return
	}
	if err := s.governance.Handler.CloseVotingHandler(r.Context(), caller); err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCallerAddress(w, r)
	if !ok {
		return
	}
	if err := s.governance.Handler.FinalizeHandler(r.Context(), caller); err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCallerAddress(w, r)
	if !ok {
		return
	}
	var req governancehttp.DelegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	if err := s.governance.Handler.DelegateHandler(r.Context(), caller, req); err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveDelegate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCallerAddress(w, r)
	if !ok {
		return
	}
	if err := s.governance.Handler.RemoveDelegateHandler(r.Context(), caller); err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCallerAddress(w, r)
	if !ok {
		return
	}
	var req governancehttp.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	if err := s.governance.Handler.VoteHandler(r.Context(), caller, req); err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCallerAddress(w, r)
	if !ok {
		return
	}
	if err := s.governance.Handler.PauseHandler(r.Context(), caller); err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCallerAddress(w, r)
	if !ok {
		return
	}
	if err := s.governance.Handler.ResumeHandler(r.Context(), caller); err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.governance.Handler.StatusHandler(r.Context()))
}

func (s *Server) handleWinner(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.WinnerHandler(r.Context())
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ResultsHandler(r.Context())
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuadraticPreview(w http.ResponseWriter, r *http.Request) {
	weight, err := strconv.ParseUint(r.URL.Query().Get("weight"), 10, 64)
	if err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_weight", "weight must be a non-negative integer")
		return
	}
	writeJSON(w, http.StatusOK, s.governance.Handler.QuadraticPreviewHandler(r.Context(), weight))
}

func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.AuditTrailHandler(r.Context())
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
