package handlers

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lightbnb/internal/security"
)

const maxPhotoSize = 10 * 1024 * 1024 // 10MB

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// PhotoHandler stores listing photos on disk. The returned URL is what a
// listing puts in thumbnail_photo_url or cover_photo_url.
type PhotoHandler struct {
	sessions  *security.SessionStore
	uploadDir string
	urlPrefix string
	log       *zap.Logger
}

func NewPhotoHandler(sessions *security.SessionStore, uploadDir, urlPrefix string, log *zap.Logger) *PhotoHandler {
	return &PhotoHandler{
		sessions:  sessions,
		uploadDir: uploadDir,
		urlPrefix: urlPrefix,
		log:       log.Named("photos"),
	}
}

type photoResponse struct {
	URL string `json:"url"`
}

func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.UserID(r); !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgNotLoggedIn})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "photo is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !photoExtensions[ext] {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported photo type"})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		serverError(w, h.log, "create upload dir", err)
		return
	}

	// Client file names are never used on disk.
	name := uuid.NewString() + ext
	dstPath := filepath.Join(h.uploadDir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		serverError(w, h.log, "create photo", err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dstPath)
		serverError(w, h.log, "save photo", err)
		return
	}

	writeJSON(w, http.StatusCreated, photoResponse{URL: path.Join(h.urlPrefix, name)})
}
