package service

import (
	"sync"

	"github.com/uofor/circulation/config"
	"github.com/uofor/circulation/internal/jsonlog"
	"github.com/uofor/circulation/internal/mailer"
	"github.com/uofor/circulation/repository"
)

type Service interface {
	books
	orders
}

// service defines the service layer. It is the only component external
// callers go through to mutate the catalog or the lending ledger.
type service struct {
	config config.Config
	wg     *sync.WaitGroup
	logger *jsonlog.Logger
	repo   repository.Repository
	mailer mailer.Mailer
}

// New creates a new instance of Service.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository, mailer mailer.Mailer) *service {
	return &service{
		config: cfg,
		wg:     wg,
		logger: logger,
		repo:   repo,
		mailer: mailer,
	}
}
