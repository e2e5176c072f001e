package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driving"
	"github.com/custodia-labs/mailmirror/internal/core/services"
)

// maxSendFiles caps the number of attachment files per send request.
const maxSendFiles = 10

// multipartMemory is the in-memory threshold for multipart parsing; larger
// parts spill to temp files.
const multipartMemory = 32 << 20

type createAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type updateAccountRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
}

type downloadAttachmentRequest struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}

	account, authURL, err := s.accounts.Create(r.Context(), req.FullName, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msgSuccess, map[string]any{
		"account": account,
		"authUrl": authURL,
	})
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}

	account, err := s.accounts.Update(r.Context(), r.PathValue("id"), driving.AccountUpdate{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgSuccess, account)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgSuccess, account)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgSuccess, accounts)
}

// handleOAuthWebhook completes the authorization flow. The state parameter
// carries the account email set when the auth URL was issued.
func (s *Server) handleOAuthWebhook(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	account, err := s.accounts.CompleteOAuth(r.Context(), code, state)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgSuccess, account)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", driving.DefaultPageSize)

	threads, err := s.syncer.Sync(r.Context(), r.PathValue("id"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgSuccess, threads)
}

func (s *Server) handleTrash(w http.ResponseWriter, r *http.Request) {
	s.labelChange(w, r, s.mailbox.Trash)
}

func (s *Server) handleUntrash(w http.ResponseWriter, r *http.Request) {
	s.labelChange(w, r, s.mailbox.Restore)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	s.labelChange(w, r, s.mailbox.MarkRead)
}

func (s *Server) handleMarkUnread(w http.ResponseWriter, r *http.Request) {
	s.labelChange(w, r, s.mailbox.MarkUnread)
}

// labelChange is the shared shape of the four thread label endpoints.
func (s *Server) labelChange(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, accountID, threadID string) (*domain.Thread, error),
) {
	thread, err := op(r.Context(), r.PathValue("id"), r.PathValue("threadID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgSuccess, thread)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// handleSend accepts a multipart form: to, cc, bcc, subject, body fields plus
// up to ten attachment files. The aggregate size check runs on the declared
// sizes before any file content is read.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}

	files := r.MultipartForm.File["attachments"]
	if len(files) > maxSendFiles {
		writeJSON(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}

	var total int64
	for _, fh := range files {
		total += fh.Size
	}
	if total > services.MaxAttachmentBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, msgTooLarge, nil)
		return
	}

	req := driving.SendRequest{
		To:      r.FormValue("to"),
		Cc:      r.FormValue("cc"),
		Bcc:     r.FormValue("bcc"),
		Subject: r.FormValue("subject"),
		Body:    r.FormValue("body"),
	}
	for _, fh := range files {
		attachment, err := readAttachment(fh)
		if err != nil {
			writeError(w, err)
			return
		}
		req.Attachments = append(req.Attachments, *attachment)
	}

	messageID, err := s.mailbox.Send(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgSuccess, map[string]string{"messageId": messageID})
}

// readAttachment loads one uploaded file into an outgoing attachment.
func readAttachment(fh *multipart.FileHeader) (*driving.OutgoingAttachment, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &driving.OutgoingAttachment{
		Filename: fh.Filename,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

// handleDownloadAttachment streams attachment bytes back with download
// headers instead of the JSON envelope.
func (s *Server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	var req downloadAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}

	download, err := s.mailbox.DownloadAttachment(r.Context(),
		r.PathValue("id"), req.URL, req.Filename, req.MIMEType)
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := download.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(download.Data)))
	_, _ = w.Write(download.Data)
}
