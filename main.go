// Package main library rental API.
//
// @title           Library Rental API
// @version         1.0
// @description     Book catalog, rentals ledger and reader notifications.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"libraryrental/app/echoServer"
	authctrl "libraryrental/app/echoServer/controller/auth"
	bookctrl "libraryrental/app/echoServer/controller/book"
	notifctrl "libraryrental/app/echoServer/controller/notification"
	rentalctrl "libraryrental/app/echoServer/controller/rental"
	userctrl "libraryrental/app/echoServer/controller/user"
	"libraryrental/config"
	bookrepo "libraryrental/repository/book"
	"libraryrental/repository/memory"
	notifrepo "libraryrental/repository/notification"
	rentalrepo "libraryrental/repository/rental"
	"libraryrental/repository/storage"
	userrepo "libraryrental/repository/user"
	authsvc "libraryrental/service/auth"
	booksvc "libraryrental/service/book"
	notificationsvc "libraryrental/service/notification"
	rentalsvc "libraryrental/service/rental"
	usersvc "libraryrental/service/user"
	"libraryrental/util/database"
)

var _ rentalsvc.Notifier = (*notificationsvc.Dispatcher)(nil)

type notificationRepo interface {
	notificationsvc.Writer
	notificationsvc.Repo
}

type userRepo interface {
	authsvc.Repo
	usersvc.Repo
}

type repos struct {
	books         booksvc.Repo
	users         userRepo
	rentals       rentalsvc.Repo
	notifications notificationRepo
	close         func()
}

func openRepos(ctx context.Context, cfg config.App, log *slog.Logger) (*repos, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		s := memory.NewStore()
		return &repos{
			books:         s.Books(),
			users:         s.Users(),
			rentals:       s.Rentals(),
			notifications: s.Notifications(),
			close:         func() {},
		}, nil
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &repos{
		books:         bookrepo.New(db),
		users:         userrepo.New(db),
		rentals:       rentalrepo.New(db),
		notifications: notifrepo.New(db),
		close:         db.Close,
	}, nil
}

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	r, err := openRepos(ctx, cfg, log)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer r.close()

	var images booksvc.ImageStore
	if cfg.Storage.Enabled() {
		st, err := storage.NewImageStore(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			log.Error("image storage init failed", "err", err)
			os.Exit(1)
		}
		images = st
	} else {
		log.Info("image storage not configured; cover uploads disabled")
	}

	// services
	dispatcher := notificationsvc.NewDispatcher(r.notifications, cfg.NotifyWorkers, cfg.NotifyQueueSize, log)
	defer dispatcher.Close()

	as := authsvc.New(r.users, cfg.JWTSecret, cfg.JWTTTL)
	bs := booksvc.New(r.books, images, log)
	rs := rentalsvc.New(r.rentals, r.books, dispatcher, rentalsvc.WithLogger(log))
	inbox := notificationsvc.NewInbox(r.notifications)
	us := usersvc.New(r.users, rs)

	if cfg.AdminEmail != "" {
		if _, err := as.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error("bootstrap admin failed", "err", err)
			os.Exit(1)
		}
	}

	reminder, err := rentalsvc.NewReminder(r.rentals, dispatcher, log, nil)
	if err != nil {
		log.Error("reminder init failed", "err", err)
		os.Exit(1)
	}
	go rentalsvc.RunReminders(ctx, reminder, cfg.OverdueSweep, log)

	// echo
	e := echoServer.New(log, echoServer.C{
		Auth:         &authctrl.Controller{Svc: as, Log: log},
		Book:         &bookctrl.Controller{Svc: bs, Rentals: rs, Log: log},
		Rental:       &rentalctrl.Controller{Svc: rs, Log: log},
		Notification: &notifctrl.Controller{Svc: inbox, Log: log},
		User:         &userctrl.Controller{Svc: us, Log: log},
		JWTSecret:    cfg.JWTSecret,
	})

	go func() {
		log.Info("starting server", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}
