package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/siteis/internal/actorctx"
	"github.com/geocoder89/siteis/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookieName = "siteis_token"
	LoginPage         = "/login.html"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// GateRecorder counts gate decisions. *observability.Prom satisfies it.
type GateRecorder interface {
	ObserveGate(decision string)
}

type nopGateRecorder struct{}

func (nopGateRecorder) ObserveGate(string) {}

type SessionGate struct {
	jwt   TokenVerifier
	rules PublicRules
	log   *slog.Logger
	rec   GateRecorder
}

func NewSessionGate(jwt TokenVerifier, rules PublicRules, log *slog.Logger, rec GateRecorder) *SessionGate {
	if log == nil {
		log = slog.Default()
	}
	if rec == nil {
		rec = nopGateRecorder{}
	}
	return &SessionGate{jwt: jwt, rules: rules, log: log, rec: rec}
}

// Handler gates every request: public paths pass untouched, everything else
// needs a valid siteis_token cookie or is redirected to the login page.
// Missing, malformed and expired tokens are treated the same way.
func (g *SessionGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch g.rules.ClassifyRequest(c.Request) {
		case ClassPublic:
			g.rec.ObserveGate("public")
			c.Next()
			return

		case ClassUndetermined:
			// no derivable path: let it through, but leave a trace
			g.rec.ObserveGate("fallback")
			g.log.WarnContext(c.Request.Context(), "session gate could not classify request, letting it through",
				"request_uri", c.Request.RequestURI,
			)
			c.Next()
			return
		}

		raw, err := c.Cookie(SessionCookieName)
		if err != nil || raw == "" {
			g.redirectToLogin(c)
			return
		}

		claims, err := g.jwt.Verify(raw)
		if err != nil {
			g.log.DebugContext(c.Request.Context(), "session token rejected", "err", err)
			g.redirectToLogin(c)
			return
		}

		// Stash useful bits of identity on the context
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actorctx.Actor{
			UserID: claims.UserID,
			Email:  claims.Email,
		}))

		g.rec.ObserveGate("allowed")
		c.Next()
	}
}

func (g *SessionGate) redirectToLogin(c *gin.Context) {
	g.rec.ObserveGate("redirect")
	c.Redirect(http.StatusFound, LoginPage)
	c.Abort()
}

// UserIDFromContext returns the session user set by the gate.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
