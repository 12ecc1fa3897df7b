package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/server"
)

// Registrar ties the account service into the HTTP router. These routes
// are public (no auth middleware).
type Registrar struct {
	svc *Service
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	g.POST("/auth/register", r.register)
	g.POST("/auth/login", r.login)
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Role        string `json:"role" binding:"required"`
	CompanyName string `json:"companyName"`
}

func (r *Registrar) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, token, err := r.svc.Register(c.Request.Context(), req.Email, req.Password, req.Name, req.Role, req.CompanyName)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "email": user.Email, "role": user.Role},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r *Registrar) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, token, err := r.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "email": user.Email, "role": user.Role},
	})
}
