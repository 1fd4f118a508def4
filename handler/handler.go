package handler

import (
	"github.com/jellydator/ttlcache/v3"
	"github.com/uofor/circulation/config"
	"github.com/uofor/circulation/data"
	"github.com/uofor/circulation/internal/jsonlog"
	"github.com/uofor/circulation/service"
)

// Handler defines Handler layer.
type Handler struct {
	config  config.Config
	logger  *jsonlog.Logger
	cache   *ttlcache.Cache[int64, *data.Book]
	service service.Service
}

// New creates a new instance of Handler.
func New(cfg config.Config, logger *jsonlog.Logger, cache *ttlcache.Cache[int64, *data.Book], service service.Service) *Handler {
	return &Handler{
		config:  cfg,
		logger:  logger,
		cache:   cache,
		service: service,
	}
}
