// Package server hosts the HTTP surface of the auth service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
	"github.com/in-labs/in-server/internal/services/auth/challenge"
)

// ChallengeIssuer produces authentication options for an email.
type ChallengeIssuer interface {
	IssueAuthenticationOptions(ctx context.Context, email string) (challenge.Result, error)
}

// Server hosts the auth HTTP endpoints.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	log        *zap.Logger
}

// New creates a configured auth server listening on addr.
func New(addr string, challenges ChallengeIssuer, log *zap.Logger) (*Server, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("http addr is required")
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := &Server{listener: listener, log: log}
	mux := http.NewServeMux()
	s.registerRoutes(mux, challenges)
	s.httpServer = &http.Server{Handler: mux}
	return s, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) registerRoutes(mux *http.ServeMux, challenges ChallengeIssuer) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/authentication/option", s.handleAuthenticationOptions(challenges))
}

// Serve blocks until the server stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.log.Info("auth server listening", zap.String("addr", s.listener.Addr().String()))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		<-serveErr
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type authenticationOptionRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleAuthenticationOptions(challenges ChallengeIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authenticationOptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperrors.Wrap(apperrors.CodeInvalidBody, "request body is not valid JSON", err))
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			s.writeError(w, apperrors.New(apperrors.CodeInvalidBody, "email is required"))
			return
		}

		result, err := challenges.IssueAuthenticationOptions(r.Context(), req.Email)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("write response", zap.Error(err))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	message := err.Error()

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	s.writeJSON(w, code.HTTPStatus(), errorResponse{
		Code:    string(code),
		Message: message,
	})
}
