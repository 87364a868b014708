package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sehoonk/echo-blog/config"
	"github.com/sehoonk/echo-blog/controller"
	"github.com/sehoonk/echo-blog/middleware"
	"github.com/sehoonk/echo-blog/store"
	"github.com/sehoonk/echo-blog/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctxDB, cancelDB := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelDB()

	client, err := mongo.Connect(ctxDB, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	if err := client.Ping(ctxDB, nil); err != nil {
		log.Fatal(err)
	}

	db := client.Database("blog")
	users := &store.Users{Collection: db.Collection("users")}
	posts := &store.Posts{Collection: db.Collection("posts")}

	// the unique index is the authority on username uniqueness
	if err := users.EnsureIndexes(ctxDB); err != nil {
		log.Fatal(err)
	}

	issuer := token.NewIssuer(cfg.JWTSecret)

	e := setupRoutes(issuer, users, posts)

	// allows us to shut down server gracefully
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			e.Logger.Info("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := e.Shutdown(ctxShutdown); err != nil {
		e.Logger.Fatal(err)
	}
	if err := client.Disconnect(ctxShutdown); err != nil {
		log.Fatal("problem disconnecting from mongodb")
	}
}

func setupRoutes(issuer *token.Issuer, users *store.Users, posts *store.Posts) *echo.Echo {
	e := echo.New()
	e.Validator = controller.NewValidator()

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.Session(issuer, users))

	authController := &controller.Auth{Users: users, Tokens: issuer}
	postsController := &controller.Posts{Store: posts}

	auth := e.Group("/api/auth")
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
	auth.GET("/check", authController.Check)
	auth.POST("/logout", authController.Logout)

	api := e.Group("/api/posts")
	api.GET("", postsController.List)
	api.POST("", postsController.Write)
	api.GET("/:id", postsController.Read)
	api.PATCH("/:id", postsController.Update)
	api.DELETE("/:id", postsController.Remove)

	return e
}
