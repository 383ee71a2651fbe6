package httptransport

import (
	"context"
	"errors"
	"io"
	"net/http"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/httpx"
	"surveyinsights/internal/storage"
)

const refreshCookie = "refreshToken"

type AuthHandlers struct {
	service AuthServices
}

type AuthServices interface {
	Register(ctx context.Context, user domains.Questioner) (domains.Questioner, error)
	Login(ctx context.Context, email string, password string) (string, string, error)
	Refresh(ctx context.Context, token string) (string, string, error)
	Me(ctx context.Context, token string) (domains.Questioner, error)
}

func NewAuthHandlers(service AuthServices) *AuthHandlers {
	return &AuthHandlers{
		service: service,
	}
}

func (srv AuthHandlers) RegisterQuestioner(w http.ResponseWriter, r *http.Request) {
	userData, err := httpx.ReadBody[domains.Questioner](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := srv.service.Register(r.Context(), userData)
	if err != nil {
		if errors.Is(err, storage.ErrUserExist) {
			httpx.Error(w, http.StatusConflict, "user already exists")
			return
		}
		writeError(w, "register", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (srv AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	loginData, err := httpx.ReadBody[LoginData](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	accessToken, refreshToken, err := srv.service.Login(r.Context(), loginData.Email, loginData.Password)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeError(w, "login", err)
		return
	}

	setRefreshCookie(w, refreshToken)
	httpx.JSON(w, http.StatusOK, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (s AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(refreshCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		body, err := httpx.ReadBody[TokenRefreshRequest](r)
		if err != nil && !errors.Is(err, io.EOF) {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		token = body.RefreshToken
	}
	if token == "" {
		httpx.Error(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	accessToken, refreshToken, err := s.service.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Error(w, http.StatusUnauthorized, "User not found")
			return
		}
		writeError(w, "refresh", err)
		return
	}
	setRefreshCookie(w, refreshToken)
	httpx.JSON(w, http.StatusOK, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (srv AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := httpx.BearerToken(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := srv.service.Me(r.Context(), tokenString)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/api/auth",
		MaxAge:   60 * 60 * 24 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
