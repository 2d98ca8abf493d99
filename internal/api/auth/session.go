package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	// SessionName is the name of the session cookie.
	SessionName = "bytesapi_session"
	// SessionUserID is the session key holding the id of the logged in user.
	SessionUserID = "user_id"
)

// Sessions returns the cookie session middleware.
func Sessions(key string, maxAge int) gin.HandlerFunc {
	store := cookie.NewStore([]byte(key))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   false, // TLS is terminated in front of the API
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(SessionName, store)
}

// StartSession stores userID in the session of c.
func StartSession(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(SessionUserID, userID)
	return session.Save()
}
