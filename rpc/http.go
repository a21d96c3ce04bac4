package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mvstaking/core"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

// Server exposes the staking ledger over JSON-RPC 2.0. Mutating methods
// require the bearer token configured via MVS_RPC_TOKEN; read-only views
// are open.
type Server struct {
	node      *core.Node
	authToken string
}

// NewServer constructs a server bound to a node.
func NewServer(node *core.Node) *Server {
	return &Server{
		node:      node,
		authToken: strings.TrimSpace(os.Getenv("MVS_RPC_TOKEN")),
	}
}

// Router assembles the HTTP surface: the RPC endpoint, a liveness probe
// and the prometheus scrape endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

// Start serves the RPC surface on addr until the listener fails.
func (s *Server) Start(addr string) error {
	fmt.Printf("Starting JSON-RPC server on %s\n", addr)
	return http.ListenAndServe(addr, s.Router())
}

// RPCRequest is a JSON-RPC 2.0 request envelope.
type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response envelope.
type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError carries a JSON-RPC error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, 0, codeParseError, "unable to read request body", nil)
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, 0, codeParseError, "invalid JSON payload", nil)
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", nil)
		return
	}

	handler, ok := s.methods()[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method %q not found", req.Method), nil)
		return
	}
	if handler.mutating {
		if err := s.requireAuth(r); err != nil {
			writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, err.Error(), nil)
			return
		}
	}
	handler.fn(w, &req)
}

type methodHandler struct {
	mutating bool
	fn       func(http.ResponseWriter, *RPCRequest)
}

func (s *Server) methods() map[string]methodHandler {
	return map[string]methodHandler{
		"staking_deposit":            {true, s.handleDeposit},
		"staking_approveAndCall":     {true, s.handleApproveAndCall},
		"staking_increasePosition":   {true, s.handleIncreasePosition},
		"staking_withdraw":           {true, s.handleWithdraw},
		"staking_claimRewards":       {true, s.handleClaimRewards},
		"staking_nextEpoch":          {true, s.handleNextEpoch},
		"staking_applyNewRewardRate": {true, s.handleApplyNewRewardRate},
		"staking_withdrawToBot":      {true, s.handleWithdrawToBot},
		"staking_addBot":             {true, s.handleAddBot},
		"staking_removeBot":          {true, s.handleRemoveBot},
		"staking_registerAsBot":      {true, s.handleRegisterAsBot},
		"staking_position":           {false, s.handlePosition},
		"staking_info":               {false, s.handleInfo},
		"staking_isBot":              {false, s.handleIsBot},
	}
}

func (s *Server) requireAuth(r *http.Request) error {
	if s.authToken == "" {
		return fmt.Errorf("rpc: mutation endpoints disabled, MVS_RPC_TOKEN not configured")
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return fmt.Errorf("rpc: missing bearer token")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return fmt.Errorf("rpc: invalid bearer token")
	}
	return nil
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("params object required")
	}
	return json.Unmarshal(req.Params[0], out)
}

func writeResult(w http.ResponseWriter, id int, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func writeError(w http.ResponseWriter, status, id, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(RPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	})
}
