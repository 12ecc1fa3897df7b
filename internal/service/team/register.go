package team

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/server"
)

// Registrar ties the team service into the HTTP router.
type Registrar struct {
	svc *Service
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	g.POST("/employer/company/invite", r.invite)
	g.GET("/employer/company/invite", r.listInvites)
	g.POST("/employer/company/invite/:inviteId/resend", r.resend)
	g.DELETE("/employer/company/invite/:inviteId", r.cancel)
	g.POST("/employer/company/invite/accept", r.accept)
	g.GET("/employer/company/team", r.listTeam)
	g.PUT("/employer/company/team/:memberId/role", r.updateRole)
	g.DELETE("/employer/company/team/:memberId", r.removeMember)
}

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

func (r *Registrar) invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invite, err := r.svc.Invite(c.Request.Context(), auth.FromGin(c), req.Email, req.Role)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invite": invite})
}

func (r *Registrar) listInvites(c *gin.Context) {
	invites, err := r.svc.ListInvites(c.Request.Context(), auth.FromGin(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": invites})
}

func (r *Registrar) resend(c *gin.Context) {
	inviteID, err := strconv.ParseUint(c.Param("inviteId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inviteId must be a valid id"})
		return
	}
	invite, err := r.svc.ResendInvite(c.Request.Context(), auth.FromGin(c), inviteID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invite": invite})
}

func (r *Registrar) cancel(c *gin.Context) {
	inviteID, err := strconv.ParseUint(c.Param("inviteId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inviteId must be a valid id"})
		return
	}
	if err := r.svc.CancelInvite(c.Request.Context(), auth.FromGin(c), inviteID); err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

type acceptRequest struct {
	Token string `json:"token" binding:"required"`
}

func (r *Registrar) accept(c *gin.Context) {
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invite, err := r.svc.AcceptInvite(c.Request.Context(), auth.FromGin(c), req.Token)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invite": invite})
}

func (r *Registrar) listTeam(c *gin.Context) {
	members, err := r.svc.ListTeam(c.Request.Context(), auth.FromGin(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	type member struct {
		ID          uint64 `json:"id"`
		Name        string `json:"name"`
		Email       string `json:"email"`
		CompanyRole string `json:"companyRole"`
	}
	out := make([]member, 0, len(members))
	for _, m := range members {
		out = append(out, member{ID: m.ID, Name: m.Name, Email: m.Email, CompanyRole: m.CompanyRole})
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (r *Registrar) updateRole(c *gin.Context) {
	memberID, err := strconv.ParseUint(c.Param("memberId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "memberId must be a valid id"})
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := r.svc.UpdateMemberRole(c.Request.Context(), auth.FromGin(c), memberID, req.Role)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": gin.H{"id": member.ID, "companyRole": member.CompanyRole}})
}

func (r *Registrar) removeMember(c *gin.Context) {
	memberID, err := strconv.ParseUint(c.Param("memberId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "memberId must be a valid id"})
		return
	}
	if err := r.svc.RemoveMember(c.Request.Context(), auth.FromGin(c), memberID); err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
