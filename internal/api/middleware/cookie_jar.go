package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieJar reads request cookies and writes response cookies. Values written
// during the request shadow the request's own, so a read after a write sees
// the new value.
type CookieJar struct {
	c       echo.Context
	secure  bool
	written map[string]*string
}

func NewCookieJar(c echo.Context, secure bool) *CookieJar {
	return &CookieJar{c: c, secure: secure, written: make(map[string]*string)}
}

func (j *CookieJar) Get(name string) (string, bool) {
	if v, ok := j.written[name]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	ck, err := j.c.Cookie(name)
	if err != nil {
		return "", false
	}
	return ck.Value, true
}

func (j *CookieJar) Set(name, value string, maxAge time.Duration) {
	j.written[name] = &value
	j.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the cookie immediately.
func (j *CookieJar) Clear(name string) {
	j.written[name] = nil
	j.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
