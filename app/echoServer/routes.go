package echoServer

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"libraryrental/app/echoServer/controller/auth"
	"libraryrental/app/echoServer/controller/book"
	"libraryrental/app/echoServer/controller/notification"
	"libraryrental/app/echoServer/controller/rental"
	"libraryrental/app/echoServer/controller/user"
	"libraryrental/app/echoServer/jwtx"
	"libraryrental/model"
	jwtutil "libraryrental/util/jwt"
)

type C struct {
	Auth         *auth.Controller
	Book         *book.Controller
	Rental       *rental.Controller
	Notification *notification.Controller
	User         *user.Controller
	JWTSecret    string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/signup", c.Auth.Signup)
	pub.POST("/auth/signin", c.Auth.Signin)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		ContextKey:  jwtx.ContextKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(_ echo.Context, auth string) (interface{}, error) {
			return jwtutil.Parse(auth, c.JWTSecret)
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		},
	}), RequireActive(c.User.Svc, c.User.Log))

	// Users
	authed.GET("/users/me", c.User.Me)

	// Books
	authed.GET("/books", c.Book.List)
	authed.GET("/books/my-rentals", c.Rental.MyRentals)
	authed.GET("/books/:id", c.Book.Detail)
	authed.GET("/books/:id/status", c.Book.Status)
	authed.POST("/books/:id/rent", c.Rental.Rent)
	authed.POST("/books/:id/return", c.Rental.Return)

	authed.PATCH("/rentals/:id/renew", c.Rental.Renew)

	// Notifications
	authed.GET("/notifications", c.Notification.List)
	authed.PATCH("/notifications/read-all", c.Notification.MarkAllRead)
	authed.PATCH("/notifications/:id/read", c.Notification.MarkRead)

	// Admin endpoints
	adminOnly := RequireRole(model.RoleAdmin)
	authed.GET("/books/admin", c.Book.AdminList, adminOnly)
	authed.POST("/books", c.Book.Create, adminOnly)
	authed.PATCH("/books/:id", c.Book.Edit, adminOnly)
	authed.PATCH("/books/:id/flags", c.Book.SetFlags, adminOnly)
	authed.PUT("/books/:id/image", c.Book.SetImage, adminOnly)
	authed.DELETE("/books/:id", c.Book.Remove, adminOnly)

	authed.GET("/users", c.User.List, adminOnly)
	authed.PATCH("/users/:id/status", c.User.SetStatus, adminOnly)

	authed.POST("/notifications", c.Notification.Create, adminOnly)

	authed.POST("/rentals", c.Rental.Create, adminOnly)
	authed.GET("/rentals", c.Rental.All, adminOnly)
	authed.GET("/rentals/overdue", c.Rental.Overdue, adminOnly)
	authed.GET("/rentals/book/:bookId", c.Rental.ByBook, adminOnly)
	authed.GET("/rentals/user/:userId", c.Rental.ByUser, adminOnly)
	authed.GET("/rentals/:id", c.Rental.Get, adminOnly)
	authed.PATCH("/rentals/:id/return", c.Rental.ReturnByID, adminOnly)
}
