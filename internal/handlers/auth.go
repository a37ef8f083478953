package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Bessima/quicksms/internal/handlers/schemas"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/service"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

type contextKey string

const (
	OperatorContextKey contextKey = "operator"
)

type Claims struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type OperatorStoreI interface {
	Login(ctx context.Context, accountID int64, password string) (*models.Operator, error)
	Get(ctx context.Context, accountID int64) (*models.Operator, error)
}

// AuthHandler issues JWTs to operators of the admin API.
type AuthHandler struct {
	jwtConfig *JWTConfig
	Operators OperatorStoreI
}

func NewAuthHandler(jwtConfig *JWTConfig, operators OperatorStoreI) *AuthHandler {
	return &AuthHandler{
		jwtConfig: jwtConfig,
		Operators: operators,
	}
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req schemas.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	operator, err := h.Operators.Login(r.Context(), req.AccountID, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeMessage(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, r, err)
		return
	}

	h.respondWithTokens(w, r, operator)
}

func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{"access_token", "refresh_token"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
		})
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// RefreshHandler trades a refresh token from the cookie or the Authorization
// header for a new pair.
func (h *AuthHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	refreshToken := ""
	if cookie, err := r.Cookie("refresh_token"); err == nil {
		refreshToken = cookie.Value
	} else {
		refreshToken = BearerToken(r)
	}
	if refreshToken == "" {
		writeMessage(w, r, http.StatusUnauthorized, "refresh token required")
		return
	}

	claims, err := h.ValidateToken(refreshToken)
	if err != nil {
		writeMessage(w, r, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	operator, err := h.Operators.Get(r.Context(), claims.AccountID)
	if err != nil {
		writeMessage(w, r, http.StatusUnauthorized, "operator not found")
		return
	}

	h.respondWithTokens(w, r, operator)
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, r *http.Request, operator *models.Operator) {
	accessToken, refreshToken, err := h.generateTokens(operator)
	if err != nil {
		logger.Log.Error("tokens were not signed", zap.Int64("account_id", operator.AccountID), zap.Error(err))
		writeMessage(w, r, http.StatusInternalServerError, "error generating tokens")
		return
	}

	h.setTokensInCookies(w, accessToken, refreshToken)
	writeJSON(w, r, http.StatusOK, schemas.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    time.Now().Add(h.jwtConfig.AccessTokenTTL).Unix(),
	})
}

func (h *AuthHandler) generateTokens(operator *models.Operator) (string, string, error) {
	accessToken, err := h.sign(operator, h.jwtConfig.AccessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := h.sign(operator, h.jwtConfig.RefreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (h *AuthHandler) sign(operator *models.Operator, ttl time.Duration) (string, error) {
	claims := Claims{
		AccountID: operator.AccountID,
		Name:      operator.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatInt(operator.AccountID, 10),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtConfig.SecretKey))
}

func (h *AuthHandler) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.jwtConfig.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

func (h *AuthHandler) setTokensInCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		Expires:  time.Now().Add(h.jwtConfig.AccessTokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		Expires:  time.Now().Add(h.jwtConfig.RefreshTokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// GetOperatorFromContext returns the operator stored by the auth middleware.
func GetOperatorFromContext(ctx context.Context) *models.Operator {
	if operator, ok := ctx.Value(OperatorContextKey).(*models.Operator); ok {
		return operator
	}
	return nil
}
