package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/erp/storefront/internal/infrastructure/gateway"
)

// ClientIDHeader identifies the calling storefront client (browser/device).
const ClientIDHeader = "X-Client-ID"

// clientIDCookie is the fallback cookie for browser clients that do not
// send the header themselves.
const clientIDCookie = "storefront_client_id"

// clientIDCookieMaxAge is one year in seconds.
const clientIDCookieMaxAge = 365 * 24 * 60 * 60

// ClientKey resolves the per-client key for the request. Resolution order:
// X-Client-ID header, then the storefront_client_id cookie. A client with
// neither gets a fresh key minted and set as a cookie. The key is stored
// in the gin context and on the request context so the gateway client can
// scope stored credentials to it.
func ClientKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(ClientIDHeader)
		if key == "" {
			if cookie, err := c.Cookie(clientIDCookie); err == nil {
				key = cookie
			}
		}
		if key == "" {
			key = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(clientIDCookie, key, clientIDCookieMaxAge, "/", "", false, true)
		}

		c.Set("client_key", key)
		c.Request = c.Request.WithContext(gateway.WithClientKey(c.Request.Context(), key))
		c.Next()
	}
}

// GetClientKey returns the client key set by ClientKey, or ""
func GetClientKey(c *gin.Context) string {
	return c.GetString("client_key")
}
