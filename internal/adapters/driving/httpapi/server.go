package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/custodia-labs/mailmirror/internal/core/ports/driving"
	"github.com/custodia-labs/mailmirror/internal/logger"
)

// Server wires the driving ports into an HTTP mux.
type Server struct {
	accounts driving.AccountService
	syncer   driving.SyncService
	mailbox  driving.MailboxService

	server *http.Server
}

// NewServer creates an HTTP server for the given services.
func NewServer(accounts driving.AccountService, syncer driving.SyncService, mailbox driving.MailboxService) *Server {
	return &Server{
		accounts: accounts,
		syncer:   syncer,
		mailbox:  mailbox,
	}
}

// Routes builds the route table.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /accounts", s.handleListAccounts)
	mux.HandleFunc("GET /accounts/webhook", s.handleOAuthWebhook)
	mux.HandleFunc("GET /accounts/sync/{id}", s.handleSync)
	mux.HandleFunc("GET /accounts/trash/{id}/{threadID}", s.handleTrash)
	mux.HandleFunc("GET /accounts/untrash/{id}/{threadID}", s.handleUntrash)
	mux.HandleFunc("GET /accounts/read/{id}/{threadID}", s.handleMarkRead)
	mux.HandleFunc("GET /accounts/unread/{id}/{threadID}", s.handleMarkUnread)
	mux.HandleFunc("POST /accounts/download-attachment/{id}", s.handleDownloadAttachment)
	mux.HandleFunc("PATCH /accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("GET /accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("POST /accounts/{id}", s.handleSend)

	return mux
}

// Start serves requests on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	logger.Info("HTTP server listening on %s", addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
