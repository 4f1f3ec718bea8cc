package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/service"
	"membership-portal-backend/internal/storage"
)

// ProofHandler handles raw uploads and downloads of proof-of-payment files
type ProofHandler struct {
	proofSvc service.ProofService
}

func NewProofHandler(proofSvc service.ProofService) *ProofHandler {
	return &ProofHandler{proofSvc: proofSvc}
}

// UploadProof handles PUT requests whose body is the file itself
func (h *ProofHandler) UploadProof(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	info, err := h.proofSvc.UploadProof(r.Context(), ActorFromContext(r.Context()), id, r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"payment_id":   id,
		"size":         info.Size,
		"content_type": info.ContentType,
	})
}

func (h *ProofHandler) DownloadProof(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	file, info, err := h.proofSvc.OpenProof(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("payment-%d-proof%s", id, storage.AllowedContentTypes[info.ContentType])
	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.Header().Set("Cache-Control", "private, no-store")

	// Stream file
	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(r.Context(), "Failed to stream proof", "payment_id", id, "error", err)
	}
}
