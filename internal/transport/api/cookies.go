package api

import (
	"net/http"

	"github.com/fsdevblog/groph-store/internal/service"
	"github.com/fsdevblog/groph-store/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
)

// authCookies запись и очистка аутентификационных кук. Куки HttpOnly и
// SameSite=Strict всегда, Secure - только в релизном режиме (локальная
// разработка идет по http).
type authCookies struct {
	secure bool
}

func (a authCookies) setPair(c *gin.Context, pair *service.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		middlewares.AccessTokenCookie, pair.AccessToken,
		int(service.AccessTokenTTL.Seconds()), "/", "", a.secure, true,
	)
	c.SetCookie(
		middlewares.RefreshTokenCookie, pair.RefreshToken,
		int(service.RefreshTokenTTL.Seconds()), "/", "", a.secure, true,
	)
}

func (a authCookies) setAccess(c *gin.Context, accessToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		middlewares.AccessTokenCookie, accessToken,
		int(service.AccessTokenTTL.Seconds()), "/", "", a.secure, true,
	)
}

func (a authCookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middlewares.AccessTokenCookie, "", -1, "/", "", a.secure, true)
	c.SetCookie(middlewares.RefreshTokenCookie, "", -1, "/", "", a.secure, true)
}
