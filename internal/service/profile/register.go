package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/db"
	"github.com/workmatch/workmatch/internal/server"
)

// Registrar ties the profile service into the HTTP router.
type Registrar struct {
	svc *Service
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	js := g.Group("/jobseeker/profile", auth.RequireRole(db.RoleJobseeker))
	js.GET("", r.get)
	js.PUT("", r.save)
}

func (r *Registrar) get(c *gin.Context) {
	prof, err := r.svc.Get(c.Request.Context(), auth.FromGin(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": prof})
}

func (r *Registrar) save(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prof, err := r.svc.Save(c.Request.Context(), auth.FromGin(c), in)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": prof})
}
