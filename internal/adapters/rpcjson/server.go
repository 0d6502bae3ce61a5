// Package rpcjson serves the claim operations as JSON-RPC 2.0 over a unix
// socket, one JSON value per request.
package rpcjson

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/claimbridge/claimbridge/internal/application"
	"github.com/claimbridge/claimbridge/internal/domain"
	"go.uber.org/zap"
)

const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInvalidInput   = 40000
	CodeNotFound       = 40400
	CodeInternal       = 50000
)

type Server struct {
	service  *application.ClaimService
	log      *zap.Logger
	listener net.Listener
	path     string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func Start(path string, service *application.ClaimService, logger *zap.Logger) (*Server, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("rpc socket path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		_ = os.Remove(path)
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		service:  service,
		log:      logger.Named("rpc"),
		listener: ln,
		path:     path,
		ctx:      ctx,
		cancel:   cancel,
		conns:    map[net.Conn]struct{}{},
	}
	s.wg.Add(1)
	go s.serve()
	s.log.Info("rpc socket listening", zap.String("path", path))
	return s, nil
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		if !s.addConn(conn) {
			_ = conn.Close()
			continue
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// addConn refuses connections once Close has started.
func (s *Server) addConn(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) removeConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

// Close stops accepting, drops open connections and waits for their
// goroutines to finish.
func (s *Server) Close() error {
	s.cancel()
	err := s.listener.Close()
	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.removeConn(conn)
		_ = conn.Close()
	}()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			_ = enc.Encode(response{JSONRPC: "2.0", Error: &rpcError{Code: CodeParseError, Message: "parse error"}, ID: nil})
			return
		}

		resp := s.dispatch(s.ctx, req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req request) response {
	if req.JSONRPC != "2.0" || strings.TrimSpace(req.Method) == "" {
		return errorResponse(req.ID, CodeInvalidRequest, "invalid request")
	}

	switch req.Method {
	case "claims.list":
		claims, err := s.service.ListClaims(ctx)
		if err != nil {
			return s.appError(req, err)
		}
		return result(req.ID, claims)

	case "claims.get":
		var p struct {
			ID uint `json:"id"`
		}
		if !decodeParams(req.Params, &p) || p.ID == 0 {
			return invalidParams(req.ID)
		}
		claim, err := s.service.GetClaim(ctx, p.ID)
		if err != nil {
			return s.appError(req, err)
		}
		return result(req.ID, claim)

	case "claims.create":
		var p domain.CreateClaimInput
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		claim, err := s.service.CreateClaim(ctx, p)
		if err != nil {
			return s.appError(req, err)
		}
		return result(req.ID, claim)

	case "claims.update_status":
		var p struct {
			ID     uint               `json:"id"`
			Status domain.ClaimStatus `json:"status"`
		}
		if !decodeParams(req.Params, &p) || p.ID == 0 {
			return invalidParams(req.ID)
		}
		if err := s.service.UpdateClaimStatus(ctx, p.ID, p.Status); err != nil {
			return s.appError(req, err)
		}
		return result(req.ID, map[string]any{"success": true})

	case "claims.generate":
		claim, err := s.service.GenerateClaim(ctx)
		if err != nil {
			return s.appError(req, err)
		}
		return result(req.ID, claim)

	case "notes.list":
		var p struct {
			ClaimID uint `json:"claim_id"`
		}
		if !decodeParams(req.Params, &p) || p.ClaimID == 0 {
			return invalidParams(req.ID)
		}
		notes, err := s.service.ListNotes(ctx, p.ClaimID)
		if err != nil {
			return s.appError(req, err)
		}
		return result(req.ID, notes)

	case "notes.create":
		var p domain.CreateNoteInput
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		note, err := s.service.CreateNote(ctx, p)
		if err != nil {
			return s.appError(req, err)
		}
		return result(req.ID, note)

	case "admins.list":
		admins, err := s.service.ListAdmins(ctx)
		if err != nil {
			return s.appError(req, err)
		}
		return result(req.ID, admins)

	case "admins.create":
		var p domain.CreateAdminInput
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		admin, err := s.service.CreateAdmin(ctx, p)
		if err != nil {
			return s.appError(req, err)
		}
		return result(req.ID, admin)

	case "db.init":
		if err := s.service.Initialize(ctx); err != nil {
			return s.appError(req, err)
		}
		return result(req.ID, map[string]any{"success": true})

	default:
		return errorResponse(req.ID, CodeMethodNotFound, "method not found")
	}
}

// decodeParams treats absent params as an empty object.
func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	return json.Unmarshal(raw, out) == nil
}

func result(id any, v any) response {
	return response{JSONRPC: "2.0", Result: v, ID: id}
}

func errorResponse(id any, code int, message string) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: code, Message: message}, ID: id}
}

func invalidParams(id any) response {
	return errorResponse(id, CodeInvalidParams, "invalid params")
}

func (s *Server) appError(req request, err error) response {
	if msg, ok := domain.ValidationMessage(err); ok {
		return errorResponse(req.ID, CodeInvalidInput, msg)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return errorResponse(req.ID, CodeNotFound, "not found")
	}
	s.log.Debug("rpc call failed", zap.String("method", req.Method), zap.Error(err))
	return errorResponse(req.ID, CodeInternal, "internal error")
}
