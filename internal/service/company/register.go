package company

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/db"
	"github.com/workmatch/workmatch/internal/server"
)

// Registrar ties the company service into the HTTP router.
type Registrar struct {
	svc *Service
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	g.GET("/employer/company", r.getCompany)
	g.POST("/employer/company", r.createCompany)
	g.PUT("/employer/company", r.updateCompany)
	g.GET("/employer/company/profile/draft", r.getDraft)
	g.POST("/employer/company/profile/draft", r.saveDraft)
	g.DELETE("/employer/company/profile/draft", r.discardDraft)
	g.POST("/employer/company/profile/draft/apply", r.applyDraft)
}

type draftRequest struct {
	db.CompanyFields
	Step int `json:"step"`
}

func (r *Registrar) saveDraft(c *gin.Context) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, err := r.svc.SaveDraft(c.Request.Context(), auth.FromGin(c), req.CompanyFields, req.Step)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (r *Registrar) getDraft(c *gin.Context) {
	draft, err := r.svc.GetDraft(c.Request.Context(), auth.FromGin(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (r *Registrar) discardDraft(c *gin.Context) {
	if err := r.svc.DiscardDraft(c.Request.Context(), auth.FromGin(c)); err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "discarded"})
}

func (r *Registrar) applyDraft(c *gin.Context) {
	company, err := r.svc.ApplyDraft(c.Request.Context(), auth.FromGin(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

func (r *Registrar) createCompany(c *gin.Context) {
	var fields db.CompanyFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	company, err := r.svc.CreateCompany(c.Request.Context(), auth.FromGin(c), fields)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

func (r *Registrar) updateCompany(c *gin.Context) {
	var fields db.CompanyFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	company, err := r.svc.UpdateCompany(c.Request.Context(), auth.FromGin(c), fields)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

func (r *Registrar) getCompany(c *gin.Context) {
	company, err := r.svc.GetCompany(c.Request.Context(), auth.FromGin(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}
