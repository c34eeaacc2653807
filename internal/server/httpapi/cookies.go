package httpapi

import (
	"net/http"
	"time"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
	"github.com/Batajoo/youtube-backend-clone/internal/server/services"
)

// CookiePolicy sets the flags shared by both auth cookies.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

func (p CookiePolicy) sameSite() http.SameSite {
	if p.SameSite == 0 {
		return http.SameSiteStrictMode
	}
	return p.SameSite
}

func (p CookiePolicy) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl).UTC(),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	}
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, pair services.TokenPair) {
	http.SetCookie(w, h.cookies.cookie(common.AccessTokenCookieName, pair.AccessToken, h.accessTTL))
	http.SetCookie(w, h.cookies.cookie(common.RefreshTokenCookieName, pair.RefreshToken, h.refreshTTL))
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0).UTC(),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookies.Secure,
			SameSite: h.cookies.sameSite(),
		})
	}
}
