package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/multibrand-site/internal/application/upload"
)

// multipartOverhead is allowed on top of the file size for form fields and boundaries.
const multipartOverhead = 1 << 20

// UploadHandler handles admin file uploads to object storage.
type UploadHandler struct {
	svc      upload.Service
	maxBytes int64
}

func NewUploadHandler(svc upload.Service, maxBytes int64) *UploadHandler {
	return &UploadHandler{svc: svc, maxBytes: maxBytes}
}

func (h *UploadHandler) Image(w http.ResponseWriter, r *http.Request) {
	f, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer f.Close()

	res, err := h.svc.UploadImage(r.Context(), upload.Input{
		Reader:   f,
		Filename: header.Filename,
		Size:     header.Size,
		Folder:   r.URL.Query().Get("folder"),
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GatedAsset replaces the file released by PIN redemption.
func (h *UploadHandler) GatedAsset(w http.ResponseWriter, r *http.Request) {
	f, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer f.Close()

	err := h.svc.ReplaceGatedAsset(r.Context(), upload.Input{
		Reader:   f,
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "gated asset replaced")
}

func (h *UploadHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, nil, false
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return nil, nil, false
	}
	return f, header, true
}
