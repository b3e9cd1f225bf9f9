package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	votingengine "dvoting/contexts/governance/voting-engine"
	governancehttp "dvoting/contexts/governance/voting-engine/transport/http"
)

const adminAddress = "0xadmin"

func newTestServer(t *testing.T, titles ...string) *Server {
	t.Helper()
	module, err := votingengine.NewInMemoryModule("board-election", adminAddress, titles, nil)
	if err != nil {
		t.Fatalf("module wiring failed: %v", err)
	}
	return New(module, nil, ":0")
}

func doJSON(t *testing.T, server *Server, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	if caller != "" {
		req.Header.Set("X-Caller-Address", caller)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response failed: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func wantErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, status, rec.Body.String())
	}
	resp := decodeBody[governancehttp.ErrorResponse](t, rec)
	if resp.Code != code {
		t.Fatalf("error code = %q, want %q", resp.Code, code)
	}
}

func TestMutationsRequireCallerHeader(t *testing.T) {
	server := newTestServer(t)
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/governance/v1/proposals"},
		{http.MethodPost, "/api/governance/v1/voters"},
		{http.MethodPost, "/api/governance/v1/voting/start"},
		{http.MethodPost, "/api/governance/v1/voting/close"},
		{http.MethodPost, "/api/governance/v1/voting/finalize"},
		{http.MethodPost, "/api/governance/v1/delegation"},
		{http.MethodDelete, "/api/governance/v1/delegation"},
		{http.MethodPost, "/api/governance/v1/votes"},
		{http.MethodPost, "/api/governance/v1/pause"},
		{http.MethodPost, "/api/governance/v1/resume"},
	}
	for _, tc := range paths {
		rec := doJSON(t, server, tc.method, tc.path, "", map[string]any{})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without caller: status = %d, want 401", tc.method, tc.path, rec.Code)
		}
		resp := decodeBody[governancehttp.ErrorResponse](t, rec)
		if resp.Code != "missing_caller" {
			t.Fatalf("%s %s error code = %q", tc.method, tc.path, resp.Code)
		}
	}
}

func TestAdminOnlyOperationsRejectOtherCallers(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/governance/v1/proposals", "0xmallory",
		governancehttp.AddProposalRequest{Title: "p"})
	wantErrorCode(t, rec, http.StatusForbidden, "unauthorized")

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/pause", "0xmallory", nil)
	wantErrorCode(t, rec, http.StatusForbidden, "unauthorized")
}

func TestFullElectionFlowOverHTTP(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/governance/v1/proposals", adminAddress,
		governancehttp.AddProposalRequest{Title: "expand treasury", Description: "spend it"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add proposal status = %d (body %q)", rec.Code, rec.Body.String())
	}
	first := decodeBody[governancehttp.AddProposalResponse](t, rec)
	if first.ProposalID != 0 {
		t.Fatalf("first proposal id = %d, want 0", first.ProposalID)
	}

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/proposals", adminAddress,
		governancehttp.AddProposalRequest{Title: "burn treasury"})
	second := decodeBody[governancehttp.AddProposalResponse](t, rec)
	if second.ProposalID != 1 {
		t.Fatalf("second proposal id = %d, want 1", second.ProposalID)
	}

	for _, voter := range []governancehttp.WhitelistVoterRequest{
		{Address: "0xa", Weight: 4},
		{Address: "0xb", Weight: 9},
	} {
		rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/voters", adminAddress, voter)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("whitelist %s status = %d (body %q)", voter.Address, rec.Code, rec.Body.String())
		}
	}

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/delegation", "0xa",
		governancehttp.DelegateRequest{To: "0xb"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delegate status = %d (body %q)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/api/governance/v1/voters/0xb", "", nil)
	voter := decodeBody[governancehttp.VoterResponse](t, rec)
	if voter.DelegatedWeight != 4 || !voter.Whitelisted {
		t.Fatalf("voter projection wrong: %+v", voter)
	}

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/voting/start", adminAddress,
		governancehttp.StartVotingRequest{DurationMinutes: 30})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("start voting status = %d (body %q)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/api/governance/v1/status", "", nil)
	status := decodeBody[governancehttp.StatusResponse](t, rec)
	if status.Phase != "voting" || !status.WindowOpen || status.VoterCount != 2 {
		t.Fatalf("status projection wrong: %+v", status)
	}

	// Winner is unavailable mid-vote.
	rec = doJSON(t, server, http.MethodGet, "/api/governance/v1/winner", "", nil)
	wantErrorCode(t, rec, http.StatusConflict, "wrong_phase")

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/votes", "0xb",
		governancehttp.VoteRequest{ProposalID: 1})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("vote status = %d (body %q)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/votes", "0xb",
		governancehttp.VoteRequest{ProposalID: 1})
	wantErrorCode(t, rec, http.StatusConflict, "already_voted")

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/votes", "0xa",
		governancehttp.VoteRequest{ProposalID: 0})
	wantErrorCode(t, rec, http.StatusBadRequest, "invalid_argument")

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/voting/close", adminAddress, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("close voting status = %d (body %q)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/api/governance/v1/winner", "", nil)
	winner := decodeBody[governancehttp.WinnerResponse](t, rec)
	if winner.ProposalID != 1 || winner.QuadraticVotes != 3 || winner.RawVotes != 13 {
		t.Fatalf("winner projection wrong: %+v", winner)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/governance/v1/results", "", nil)
	results := decodeBody[governancehttp.ResultsResponse](t, rec)
	if results.Winner != 1 || len(results.Items) != 2 {
		t.Fatalf("results projection wrong: %+v", results)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/governance/v1/audit", "", nil)
	audit := decodeBody[governancehttp.AuditTrailResponse](t, rec)
	if len(audit.Items) == 0 {
		t.Fatalf("audit trail empty")
	}
	for i, item := range audit.Items {
		if item.Sequence != uint64(i+1) {
			t.Fatalf("audit item %d sequence = %d, want %d", i, item.Sequence, i+1)
		}
	}
}

func TestPauseBlocksMutationsOverHTTP(t *testing.T) {
	server := newTestServer(t, "p0")

	rec := doJSON(t, server, http.MethodPost, "/api/governance/v1/pause", adminAddress, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("pause status = %d (body %q)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/voters", adminAddress,
		governancehttp.WhitelistVoterRequest{Address: "0xa", Weight: 4})
	wantErrorCode(t, rec, http.StatusConflict, "election_paused")

	// Reads stay open while paused.
	rec = doJSON(t, server, http.MethodGet, "/api/governance/v1/status", "", nil)
	status := decodeBody[governancehttp.StatusResponse](t, rec)
	if !status.Paused {
		t.Fatalf("status should report paused: %+v", status)
	}

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/resume", adminAddress, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("resume status = %d (body %q)", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/voters", adminAddress,
		governancehttp.WhitelistVoterRequest{Address: "0xa", Weight: 4})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("whitelist after resume status = %d (body %q)", rec.Code, rec.Body.String())
	}
}

func TestDelegationErrorMapping(t *testing.T) {
	server := newTestServer(t, "p0")
	for _, req := range []governancehttp.WhitelistVoterRequest{
		{Address: "0xa", Weight: 4},
		{Address: "0xb", Weight: 9},
	} {
		rec := doJSON(t, server, http.MethodPost, "/api/governance/v1/voters", adminAddress, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("whitelist status = %d", rec.Code)
		}
	}

	rec := doJSON(t, server, http.MethodPost, "/api/governance/v1/delegation", "0xa",
		governancehttp.DelegateRequest{To: "0xa"})
	wantErrorCode(t, rec, http.StatusBadRequest, "self_delegation")

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/delegation", "0xa",
		governancehttp.DelegateRequest{To: "0xnobody"})
	wantErrorCode(t, rec, http.StatusBadRequest, "invalid_target")

	rec = doJSON(t, server, http.MethodPost, "/api/governance/v1/delegation", "0xstranger",
		governancehttp.DelegateRequest{To: "0xa"})
	wantErrorCode(t, rec, http.StatusForbidden, "not_whitelisted")

	rec = doJSON(t, server, http.MethodDelete, "/api/governance/v1/delegation", "0xa", nil)
	wantErrorCode(t, rec, http.StatusConflict, "no_delegation")
}

func TestQuadraticPreviewEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/governance/v1/quadratic?weight=13", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d", rec.Code)
	}
	preview := decodeBody[governancehttp.QuadraticPreviewResponse](t, rec)
	if preview.Weight != 13 || preview.QuadraticVotes != 3 {
		t.Fatalf("preview = %+v, want 13 -> 3", preview)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/governance/v1/quadratic?weight=abc", "", nil)
	wantErrorCode(t, rec, http.StatusBadRequest, "invalid_weight")
}

func TestMalformedBodyIsRejected(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/governance/v1/proposals", bytes.NewBufferString("{not json"))
	req.Header.Set("X-Caller-Address", adminAddress)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	wantErrorCode(t, rec, http.StatusBadRequest, "invalid_body")
}
