package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/handler"
	"github.com/rushgit99x/StarTickets-F-sub001/internal/middleware"
)

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Route group for operations that do not require an existing session.
	// Each of these handlers is responsible for generating or exchanging
	// tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and issues a fresh access token.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a JSON body containing a refresh_token and revokes it.
	// It deliberately requires no JWT so an expired session can still be
	// terminated.
	g.POST("/logout", a.Logout)

	// Protected group: a valid access token with a known role is required.
	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "ORGANIZER"),
	)
	auth.GET("/me", a.Me)
}
