package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/siteis/internal/config"
	"github.com/geocoder89/siteis/internal/domain/user"
	"github.com/geocoder89/siteis/internal/http/middlewares"
	"github.com/geocoder89/siteis/internal/security"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgEmailTaken         = "email already registered"
	msgInternal           = "internal error"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, name, email, passwordHash string) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID int64, email string) (string, time.Time, error)
}

// AuthRecorder counts auth outcomes. *observability.Prom satisfies it.
type AuthRecorder interface {
	ObserveAuth(action, result string)
}

type nopAuthRecorder struct{}

func (nopAuthRecorder) ObserveAuth(string, string) {}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        TokenIssuer
	rec        AuthRecorder
	cfg        config.Config
	log        *slog.Logger
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwtManager TokenIssuer, rec AuthRecorder, cfg config.Config, log *slog.Logger) *AuthHandler {
	if rec == nil {
		rec = nopAuthRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwtManager,
		rec:        rec,
		cfg:        cfg,
		log:        log,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" form:"name" binding:"required,notblank"`
	Email    string `json:"email" form:"email" binding:"required,notblank"`
	Password string `json:"password" form:"password" binding:"required,notblank"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,notblank"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindBody(ctx, &req) {
		h.rec.ObserveAuth("register", "invalid")
		return
	}

	reqCtx := ctx.Request.Context()

	// cheap early answer for the common duplicate; Create re-checks under the lock
	if _, err := h.users.GetByEmail(reqCtx, req.Email); err == nil {
		h.rec.ObserveAuth("register", "conflict")
		RespondConflict(ctx, msgEmailTaken)
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			h.rec.ObserveAuth("register", "invalid")
			RespondBadRequest(ctx, "password too long", []FieldError{
				{Field: "password", Rule: "max", Param: "72", Message: "must be at most 72 bytes"},
			})
			return
		}

		h.rec.ObserveAuth("register", "error")
		h.log.ErrorContext(reqCtx, "password hash failed", "err", err)
		RespondInternal(ctx, msgInternal)
		return
	}

	u, err := h.userWriter.Create(reqCtx, strings.TrimSpace(req.Name), req.Email, hash)
	if err != nil {
		if errors.Is(err, user.ErrEmailAlreadyUsed) {
			h.rec.ObserveAuth("register", "conflict")
			RespondConflict(ctx, msgEmailTaken)
			return
		}

		h.rec.ObserveAuth("register", "error")
		RespondInternal(ctx, "could not save user")
		return
	}

	h.rec.ObserveAuth("register", "ok")
	h.log.InfoContext(reqCtx, "user registered", "user_id", u.ID)

	ctx.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"user": u.Public(),
	})
}

// Login answers unknown emails and wrong passwords with the same 401 body,
// and pays for one bcrypt comparison in both cases.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindBody(ctx, &req) {
		h.rec.ObserveAuth("login", "invalid")
		return
	}

	reqCtx := ctx.Request.Context()

	found, err := h.users.GetByEmail(reqCtx, req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			h.rec.ObserveAuth("login", "error")
			h.log.ErrorContext(reqCtx, "user lookup failed", "err", err)
			RespondInternal(ctx, msgInternal)
			return
		}

		security.BurnCompare(req.Password)
		h.rec.ObserveAuth("login", "unauthorized")
		RespondUnauthorized(ctx, msgInvalidCredentials)
		return
	}

	if !security.VerifyPassword(found.PasswordHash, req.Password) {
		h.rec.ObserveAuth("login", "unauthorized")
		RespondUnauthorized(ctx, msgInvalidCredentials)
		return
	}

	token, expiresAt, err := h.jwt.Issue(found.ID, found.Email)
	if err != nil {
		h.rec.ObserveAuth("login", "error")
		h.log.ErrorContext(reqCtx, "token issue failed", "err", err)
		RespondInternal(ctx, msgInternal)
		return
	}

	h.setSessionCookie(ctx, token, expiresAt)
	h.rec.ObserveAuth("login", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"user": found.Public(),
	})
}

// Logout clears the cookie whether or not a session exists. Tokens are
// stateless, so there is nothing to revoke server-side.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

// Helper functions

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	// 0 leaves it a browser-session cookie
	maxAge := 0
	if h.cfg.CookieMatchTTL {
		maxAge = int(time.Until(expiresAt).Seconds())
		if maxAge <= 0 {
			maxAge = -1
		}
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		raw,
		maxAge,
		"/",
		"",
		h.cfg.IsProd(),
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		h.cfg.IsProd(),
		true,
	)
}
