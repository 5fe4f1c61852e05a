package httpapi

import (
	"net/http"
	"strconv"
	"time"

	goRotate "github.com/MrEthical07/goRotate"
)

const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
	CookieRSID         = "rsid"
	CookieIssuedAt     = "sessIat"
)

// CookieConfig controls the attributes of every session cookie.
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

func (c CookieConfig) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	sameSite := c.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.Domain,
		Path:     path,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: sameSite,
	}
}

func (a *API) setSessionCookies(w http.ResponseWriter, set *goRotate.TokenSet) {
	refreshTTL := a.rotator.RefreshTTL()
	http.SetCookie(w, a.cookies.cookie(CookieAccessToken, set.AccessToken, a.rotator.AccessTTL()))
	http.SetCookie(w, a.cookies.cookie(CookieRefreshToken, set.RefreshToken, refreshTTL))
	http.SetCookie(w, a.cookies.cookie(CookieRSID, set.RSID, refreshTTL))
	http.SetCookie(w, a.cookies.cookie(CookieIssuedAt, strconv.FormatInt(set.IssuedAt.Unix(), 10), refreshTTL))
}

func (a *API) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{CookieAccessToken, CookieRefreshToken, CookieRSID, CookieIssuedAt} {
		c := a.cookies.cookie(name, "", 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}
