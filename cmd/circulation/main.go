package main

import (
	"os"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/uofor/circulation/config"
	"github.com/uofor/circulation/data"
	_ "github.com/uofor/circulation/docs"
	"github.com/uofor/circulation/handler"
	"github.com/uofor/circulation/internal/jsonlog"
	"github.com/uofor/circulation/internal/mailer"
	"github.com/uofor/circulation/repository"
	"github.com/uofor/circulation/repository/postgres"
	"github.com/uofor/circulation/service"
)

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	repo    repository.Repository
	service service.Service
	handler *handler.Handler
}

// @title  Circulation API
// @version 1.0.0
// @description This is an API service for the university library's book lending circulation.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @BasePath /
func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	// Initialize configuration
	cfg, err := config.Decode()
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	// Initialize database connection
	db, err := postgres.OpenDBConn(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer db.Close()
	logger.PrintInfo("database connection pool established", nil)

	// Other shared resources: waitgroup and in-memory book cache
	var wg sync.WaitGroup
	cache := ttlcache.New(ttlcache.WithTTL[int64, *data.Book](30 * time.Second))
	go cache.Start()

	// Application layers
	mailer := mailer.New(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.Sender)
	repo := repository.New(db)
	service := service.New(cfg, &wg, logger, repo, mailer)
	handler := handler.New(cfg, logger, cache, service)

	// Instantiate application
	app := &app{
		config:  cfg,
		repo:    repo,
		service: service,
		handler: handler,
	}

	// Start HTTP server
	err = app.serve(&wg, logger)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}
