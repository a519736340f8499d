package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"

	"opscloud/config"
	"opscloud/models"
)

var Store *sessions.CookieStore

func InitStore() {
	// Derive two 32-byte keys from the session key to ensure secure encryption
	// Auth key for signing (HMAC)
	authKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "auth"))
	// Encryption key for content encryption (AES)
	encKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "encryption"))

	Store = sessions.NewCookieStore(authKey[:], encKey[:])

	// Ensure cookie security settings
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days; identity only, nothing sensitive inside
		HttpOnly: true,
		Secure:   config.AppConfig.ListenPort != 8080, // Default to true unless dev port
		SameSite: http.SameSiteLaxMode,
	}
}

const SessionName = "opscloud-session"

// CurrentUser returns the remembered identity for this browser session.
// There is no credential behind it; an absent session just means nobody has
// picked a name yet.
func CurrentUser(r *http.Request) (models.Session, bool) {
	session, _ := Store.Get(r, SessionName)
	name, ok := session.Values["name"].(string)
	if !ok || name == "" {
		return models.Session{}, false
	}
	role, _ := session.Values["role"].(string)
	return models.Session{Name: name, Role: role}, true
}

func IsManager(r *http.Request) bool {
	user, ok := CurrentUser(r)
	return ok && user.IsManager()
}

func SetSession(w http.ResponseWriter, r *http.Request, user models.Session) {
	session, _ := Store.Get(r, SessionName)
	session.Values["name"] = user.Name
	session.Values["role"] = user.Role
	session.Save(r, w)
}

func ClearSession(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, SessionName)
	session.Options.MaxAge = -1
	session.Save(r, w)
}
