package handlers

import (
	"net/http"
	"time"

	"github.com/pribylovaa/videotube-accounts/internal/storage"
	"github.com/pribylovaa/videotube-accounts/internal/transport/http/middleware"
	"github.com/pribylovaa/videotube-accounts/internal/transport/http/response"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type presignRequest struct {
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
}

type presignResponse struct {
	UploadURL       string            `json:"uploadUrl"`
	Key             string            `json:"key"`
	ExpiresSeconds  int64             `json:"expiresSeconds"`
	RequiredHeaders map[string]string `json:"requiredHeaders"`
}

type confirmUploadRequest struct {
	Key string `json:"key"`
}

// Register — POST /api/v1/users/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.service.Register(r.Context(), in.Username, in.Email, in.FullName, in.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, http.StatusCreated, account, "account registered successfully")
}

// CurrentUser — GET /api/v1/users/current-user (за гейтом).
// Аккаунт уже добыт гейтом из access-токена — просто отдаём его.
func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	response.OK(w, http.StatusOK, account, "current user fetched successfully")
}

// UpdateAccount — PATCH /api/v1/users/update-account (за гейтом).
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in updateAccountRequest
	if err := decodeStrict(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.service.UpdateAccount(r.Context(), account.ID, in.FullName, in.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, http.StatusOK, updated, "account updated successfully")
}

// PresignAvatarUpload — POST /api/v1/users/avatar/presign (за гейтом).
func (h *Handlers) PresignAvatarUpload(w http.ResponseWriter, r *http.Request) {
	h.presignUpload(w, r, storage.MediaAvatar)
}

// ConfirmAvatarUpload — POST /api/v1/users/avatar/confirm (за гейтом).
func (h *Handlers) ConfirmAvatarUpload(w http.ResponseWriter, r *http.Request) {
	h.confirmUpload(w, r, storage.MediaAvatar)
}

// PresignCoverUpload — POST /api/v1/users/cover/presign (за гейтом).
func (h *Handlers) PresignCoverUpload(w http.ResponseWriter, r *http.Request) {
	h.presignUpload(w, r, storage.MediaCover)
}

// ConfirmCoverUpload — POST /api/v1/users/cover/confirm (за гейтом).
func (h *Handlers) ConfirmCoverUpload(w http.ResponseWriter, r *http.Request) {
	h.confirmUpload(w, r, storage.MediaCover)
}

func (h *Handlers) presignUpload(w http.ResponseWriter, r *http.Request, kind storage.MediaKind) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in presignRequest
	if err := decodeStrict(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	info, err := h.service.MediaUploadURL(r.Context(), kind, account.ID, in.ContentType, in.ContentLength)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := presignResponse{
		UploadURL:       info.UploadURL,
		Key:             info.Key,
		ExpiresSeconds:  int64(info.Expires / time.Second),
		RequiredHeaders: info.RequiredHeader,
	}
	response.OK(w, http.StatusOK, out, "upload url generated successfully")
}

func (h *Handlers) confirmUpload(w http.ResponseWriter, r *http.Request, kind storage.MediaKind) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in confirmUploadRequest
	if err := decodeStrict(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.service.ConfirmMediaUpload(r.Context(), kind, account.ID, in.Key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, http.StatusOK, updated, "upload confirmed successfully")
}
