package httpapi

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
	"github.com/Batajoo/youtube-backend-clone/internal/server/services"
)

const multipartMemory = 4 << 20

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         *models.Identity `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *Handler) healthcheck(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			h.log.Warn(r.Context(), "health check failed", "error", err)
			writeFailure(w, http.StatusServiceUnavailable, "Service unavailable")
			return
		}
	}
	writeSuccess(w, http.StatusOK, nil, "OK")
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	files, err := h.parseMultipart(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer files.close()

	avatar, err := files.get(r, "avatar")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cover, err := files.get(r, "coverImage")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	identity, err := h.users.Register(r.Context(), services.RegisterInput{
		Username:   r.FormValue("username"),
		Email:      r.FormValue("email"),
		FullName:   r.FormValue("fullName"),
		Password:   r.FormValue("password"),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, identity, "User registered Successfully")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	sess, err := h.users.LoginByUsernameOrEmail(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setAuthCookies(w, sess.Tokens)
	writeSuccess(w, http.StatusOK, loginResponse{
		User:         sess.Identity,
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	}, "User logged In Successfully")
}

// refreshToken reads the refresh token from its cookie only.
func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	var presented string
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		presented = c.Value
	}

	pair, err := h.users.RefreshToken(r.Context(), presented)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setAuthCookies(w, *pair)
	writeSuccess(w, http.StatusOK, pair, "Access token refreshed")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	if err := h.users.Logout(r.Context(), identity.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.clearAuthCookies(w)
	writeSuccess(w, http.StatusOK, nil, "User logged Out")
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if err := h.users.ChangePassword(r.Context(), identity.ID, req.OldPassword, req.NewPassword); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "Password changed successfully")
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	writeSuccess(w, http.StatusOK, identity, "Current user fetched successfully")
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	updated, err := h.users.UpdateAccountDetails(r.Context(), identity.ID, req.FullName, req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, updated, "Account details updated successfully")
}

func (h *Handler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.users.UpdateAvatar, "Avatar image updated successfully")
}

func (h *Handler) updateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.users.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdate func(ctx context.Context, userID string, file *services.FileUpload) (*models.Identity, error)

func (h *Handler) updateImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdate, message string) {
	files, err := h.parseMultipart(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer files.close()

	file, err := files.get(r, field)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	updated, err := update(r.Context(), identity.ID, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, updated, message)
}

// formFiles tracks opened multipart files so handlers can close them.
type formFiles struct {
	form   *multipart.Form
	opened []multipart.File
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) (*formFiles, error) {
	if r.ContentLength > h.maxUploadBytes {
		return nil, badRequest("invalid multipart body", &http.MaxBytesError{Limit: h.maxUploadBytes})
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, badRequest("invalid multipart body", err)
	}
	return &formFiles{form: r.MultipartForm}, nil
}

// get opens the named file field. A missing field yields a nil upload.
func (f *formFiles) get(r *http.Request, field string) (*services.FileUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, badRequest("invalid file "+field, err)
	}
	f.opened = append(f.opened, file)

	return &services.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, nil
}

func (f *formFiles) close() {
	for _, file := range f.opened {
		_ = file.Close()
	}
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}
