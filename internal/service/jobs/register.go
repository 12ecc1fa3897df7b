package jobs

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/server"
)

// Registrar ties the jobs service into the HTTP router.
type Registrar struct {
	svc *Service
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	g.POST("/jobs", r.create)
	g.GET("/jobs", r.list)
	g.GET("/jobs/:jobPostingId", r.get)
	g.PUT("/jobs/:jobPostingId", r.update)
}

func (r *Registrar) create(c *gin.Context) {
	var in PostingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	posting, err := r.svc.Create(c.Request.Context(), auth.FromGin(c), in)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job": posting})
}

func (r *Registrar) list(c *gin.Context) {
	postings, err := r.svc.List(c.Request.Context(), auth.FromGin(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": postings})
}

func (r *Registrar) get(c *gin.Context) {
	postingID, err := strconv.ParseUint(c.Param("jobPostingId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jobPostingId must be a valid id"})
		return
	}
	posting, err := r.svc.Get(c.Request.Context(), postingID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": posting})
}

func (r *Registrar) update(c *gin.Context) {
	postingID, err := strconv.ParseUint(c.Param("jobPostingId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jobPostingId must be a valid id"})
		return
	}
	var in PostingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	posting, err := r.svc.Update(c.Request.Context(), auth.FromGin(c), postingID, in)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": posting})
}
