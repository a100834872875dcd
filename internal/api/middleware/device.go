package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// DeviceCookie identifies the client whose durable storage slot is used.
	DeviceCookie = "helios_device"
	deviceMaxAge = 365 * 24 * time.Hour

	ctxDeviceID = "device_id"
)

// Device makes sure every request carries a device identifier, issuing a new
// one in a long-lived cookie when the client has none or sends garbage.
func Device(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(DeviceCookie); err == nil {
				if parsed, err := uuid.Parse(ck.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     DeviceCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(deviceMaxAge / time.Second),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(ctxDeviceID, id)
			return next(c)
		}
	}
}

// DeviceID returns the identifier set by Device.
func DeviceID(c echo.Context) string {
	id, _ := c.Get(ctxDeviceID).(string)
	return id
}
