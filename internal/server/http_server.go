package server

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/workmatch/workmatch/internal/config"
	svcErr "github.com/workmatch/workmatch/internal/errors"
	"github.com/workmatch/workmatch/internal/metrics"
)

// Registrar is a common interface for all HTTP service registrars.
type Registrar interface {
	Register(g *gin.RouterGroup)
}

// NewRouter builds the gin engine: CORS, metrics, a public /api group and
// an authenticated /api group guarded by authMW.
func NewRouter(cfg *config.Config, authMW gin.HandlerFunc, public, protected []Registrar) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.Default())

	metrics.Register(r)

	api := r.Group("/api")
	for _, reg := range public {
		reg.Register(api)
	}

	authed := api.Group("", authMW)
	for _, reg := range protected {
		reg.Register(authed)
	}

	return r
}

// StartHTTPServer boots the HTTP server on the configured address.
func StartHTTPServer(cfg *config.Config, r *gin.Engine) error {
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	return r.Run(addr)
}

// Fail writes the error mapped to its HTTP status and counts it.
func Fail(c *gin.Context, err error) {
	status, msg := svcErr.Map(err)
	if status >= http.StatusInternalServerError {
		metrics.ErrorsCounter.WithLabelValues("internal").Inc()
	} else {
		metrics.ErrorsCounter.WithLabelValues("client").Inc()
	}
	c.JSON(status, gin.H{"error": msg})
}
