package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"quiz-portal/internal/dto"
	"quiz-portal/internal/session"
	"quiz-portal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	stateKey  = "session_state"
	handleKey = "session_handle"
)

type SessionOptions struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type sessionHandle struct {
	opts      SessionOptions
	id        string
	persisted bool
	stale     string
}

// Session loads the visitor's state before the handler runs and writes it
// back afterwards. The cookie holds a signed token carrying the session id;
// a missing or invalid cookie starts a fresh session.
func Session(store session.Store, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		handle := &sessionHandle{opts: opts}
		state := session.New()

		if cookie, err := c.Cookie(opts.CookieName); err == nil && cookie != "" {
			if sid, err := jwt.ValidateSessionToken(cookie, opts.Secret); err == nil {
				loaded, err := store.Load(ctx, sid)
				if err != nil {
					log.Printf("Failed to load session: %v", err)
				} else {
					handle.id = sid
					handle.persisted = true
					state = loaded
				}
			}
		}

		if handle.id == "" {
			if err := handle.issue(c); err != nil {
				log.Printf("Failed to issue session: %v", err)
				dto.JsonError(c, http.StatusInternalServerError)
				c.Abort()
				return
			}
		}

		c.Set(stateKey, state)
		c.Set(handleKey, handle)

		c.Next()

		if handle.stale != "" {
			if err := store.Delete(ctx, handle.stale); err != nil {
				log.Printf("Failed to delete session: %v", err)
			}
		}

		if state.IsEmpty() {
			if handle.persisted {
				if err := store.Delete(ctx, handle.id); err != nil {
					log.Printf("Failed to delete session: %v", err)
				}
			}
			return
		}

		if err := store.Save(ctx, handle.id, state); err != nil {
			log.Printf("Failed to save session: %v", err)
		}
	}
}

func (h *sessionHandle) issue(c *gin.Context) error {
	sid := uuid.New().String()
	token, err := jwt.GenerateSessionToken(sid, h.opts.Secret, h.opts.TTL)
	if err != nil {
		return fmt.Errorf("failed to sign session cookie: %w", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, token, int(h.opts.TTL.Seconds()), "/", "", h.opts.Secure, true)

	h.id = sid
	h.persisted = false
	return nil
}

// State returns the session state loaded by Session, or nil outside it.
func State(c *gin.Context) *session.State {
	v, ok := c.Get(stateKey)
	if !ok {
		return nil
	}
	state, _ := v.(*session.State)
	return state
}

// RenewSession moves the current state to a new session id. Call it after
// authentication so a pre-login id cannot be reused. Must run before the
// response body is written.
func RenewSession(c *gin.Context) error {
	v, ok := c.Get(handleKey)
	if !ok {
		return fmt.Errorf("no session on context")
	}
	h := v.(*sessionHandle)

	if h.persisted {
		h.stale = h.id
	}
	return h.issue(c)
}
