package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"surveyinsights/internal/domains"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

type AuthService struct {
	provider AuthProvider
	secret   string
}

func NewAuthService(provider AuthProvider, secret string) *AuthService {
	return &AuthService{
		provider: provider,
		secret:   secret,
	}
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (string, string, error) {
	user, err := s.provider.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		slog.Error("fetch user", "email", email, "err", err)
		return "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", PasswordIncorrect
	}

	accessToken, refreshToken, err := s.GenerateTokens(user)
	if err != nil {
		slog.Error("generate tokens", "user_id", user.Id, "err", err)
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *AuthService) GenerateTokens(user domains.Questioner) (accessToken string, refreshToken string, err error) {
	now := time.Now()
	accessClaims := jwt.MapClaims{
		"sub":  user.Id,
		"exp":  now.Add(accessTTL).Unix(),
		"type": "access",
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.secret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  user.Id,
		"exp":  now.Add(refreshTTL).Unix(),
		"type": "refresh",
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.secret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) Register(ctx context.Context, userData domains.Questioner) (domains.Questioner, error) {
	if strings.TrimSpace(userData.Email) == "" || userData.Password == "" {
		return domains.Questioner{}, ErrCredentialsRequired
	}
	passHash, err := bcrypt.GenerateFromPassword([]byte(userData.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("hash password", "err", err)
		return domains.Questioner{}, err
	}

	userData.Id = uuid.NewString()
	userData.Email = strings.TrimSpace(userData.Email)
	userData.Role = domains.RoleQuestioner
	userData.CreatedAt = time.Now().UTC()

	saved, err := s.provider.SaveUser(ctx, string(passHash), userData)
	if err != nil {
		slog.Error("save user", "email", userData.Email, "err", err)
		return domains.Questioner{}, err
	}
	saved.Password = ""
	return saved, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sub, claims, err := s.validateAndGetSubByToken(refreshToken)
	if err != nil || claims["type"] != "refresh" {
		return "", "", TokenIncorrect
	}

	user, err := s.provider.GetUserByID(ctx, sub)
	if err != nil {
		return "", "", err
	}
	return s.GenerateTokens(user)
}

func (s *AuthService) Me(ctx context.Context, token string) (domains.Questioner, error) {
	sub, claims, err := s.validateAndGetSubByToken(token)
	if err != nil || claims["type"] != "access" {
		return domains.Questioner{}, TokenIncorrect
	}
	user, err := s.provider.GetUserByID(ctx, sub)
	if err != nil {
		return domains.Questioner{}, err
	}
	user.Password = ""
	return user, nil
}

func (s *AuthService) validateAndGetSubByToken(initToken string) (string, jwt.MapClaims, error) {
	token, err := jwt.Parse(initToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return "", nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", nil, errors.New("subject missing")
	}
	return sub, claims, nil
}
