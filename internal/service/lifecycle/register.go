package lifecycle

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/server"
)

// Registrar ties the lifecycle service into the HTTP router.
type Registrar struct {
	svc *Service
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

func (r *Registrar) Register(g *gin.RouterGroup) {
	g.POST("/matches/:matchId/share-jobs", r.shareJobs)
	g.POST("/matches/:matchId/schedule", r.schedule)
	g.POST("/jobs/:jobPostingId/interest", r.jobInterest)
}

type shareJobsRequest struct {
	JobPostingIDs []uint64 `json:"jobPostingIds" binding:"required"`
}

func (r *Registrar) shareJobs(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("matchId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "matchId must be a valid id"})
		return
	}
	var req shareJobsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	match, jobs, err := r.svc.ShareJobs(c.Request.Context(), auth.FromGin(c), matchID, req.JobPostingIDs)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": match, "sharedJobs": jobs})
}

type scheduleRequest struct {
	ScheduledAt   string `json:"scheduledAt" binding:"required"`
	InterviewType string `json:"interviewType" binding:"required"`
}

func (r *Registrar) schedule(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("matchId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "matchId must be a valid id"})
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduledAt must be an RFC3339 timestamp"})
		return
	}
	match, err := r.svc.ScheduleInterview(c.Request.Context(), auth.FromGin(c), matchID, scheduledAt, req.InterviewType)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": match})
}

type jobInterestRequest struct {
	Interested *bool `json:"interested" binding:"required"`
}

func (r *Registrar) jobInterest(c *gin.Context) {
	jobPostingID, err := strconv.ParseUint(c.Param("jobPostingId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jobPostingId must be a valid id"})
		return
	}
	var req jobInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	schedulingEnabled, err := r.svc.ExpressJobInterest(c.Request.Context(), auth.FromGin(c), jobPostingID, *req.Interested)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interested": *req.Interested, "schedulingEnabled": schedulingEnabled})
}
