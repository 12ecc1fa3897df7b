package matching

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/server"
)

// Registrar ties the matching service into the HTTP router.
type Registrar struct {
	svc *Service
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

// Register attaches the swipe/match/feed routes.
func (r *Registrar) Register(g *gin.RouterGroup) {
	g.POST("/jobseeker/swipe", r.jobseekerSwipe)
	g.GET("/jobseeker/feed", r.jobseekerFeed)
	g.GET("/jobseeker/liked-you", r.likedYou)
	g.GET("/jobseeker/liked-you/count", r.likedYouCount)

	g.POST("/employer/swipe", r.employerSwipe)
	g.GET("/employer/candidates", r.candidates)

	g.GET("/matches", r.listMatches)
	g.GET("/matches/:matchId", r.getMatch)
}

type jobseekerSwipeRequest struct {
	EmployerID uint64 `json:"employerId" binding:"required"`
	Interested *bool  `json:"interested" binding:"required"`
}

func (r *Registrar) jobseekerSwipe(c *gin.Context) {
	var req jobseekerSwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := r.svc.RecordSwipe(c.Request.Context(), auth.FromGin(c), req.EmployerID, *req.Interested)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"swipe": result.Swipe, "match": result.Match})
}

type employerSwipeRequest struct {
	JobseekerID uint64 `json:"jobseekerId" binding:"required"`
	Interested  *bool  `json:"interested" binding:"required"`
}

func (r *Registrar) employerSwipe(c *gin.Context) {
	var req employerSwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := r.svc.RecordSwipe(c.Request.Context(), auth.FromGin(c), req.JobseekerID, *req.Interested)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"swipe": result.Swipe, "match": result.Match})
}

func (r *Registrar) listMatches(c *gin.Context) {
	matches, next, err := r.svc.ListMatches(c.Request.Context(), auth.FromGin(c), tokenParam(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "nextPaginationToken": next})
}

func (r *Registrar) getMatch(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("matchId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "matchId must be a valid id"})
		return
	}
	match, jobs, err := r.svc.GetMatch(c.Request.Context(), auth.FromGin(c), matchID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": match, "sharedJobs": jobs})
}

func (r *Registrar) jobseekerFeed(c *gin.Context) {
	companies, next, err := r.svc.JobseekerFeed(c.Request.Context(), auth.FromGin(c), tokenParam(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies, "nextPaginationToken": next})
}

func (r *Registrar) candidates(c *gin.Context) {
	users, next, err := r.svc.EmployerCandidates(c.Request.Context(), auth.FromGin(c), tokenParam(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	// never expose password hashes
	type candidate struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}
	out := make([]candidate, 0, len(users))
	for _, u := range users {
		out = append(out, candidate{ID: u.ID, Name: u.Name})
	}
	c.JSON(http.StatusOK, gin.H{"candidates": out, "nextPaginationToken": next})
}

func (r *Registrar) likedYou(c *gin.Context) {
	likers, next, err := r.svc.ListInterestedEmployers(c.Request.Context(), auth.FromGin(c), tokenParam(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likers": likers, "nextPaginationToken": next})
}

func (r *Registrar) likedYouCount(c *gin.Context) {
	count, err := r.svc.CountInterestedEmployers(c.Request.Context(), auth.FromGin(c))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func tokenParam(c *gin.Context) *string {
	if token := c.Query("paginationToken"); token != "" {
		return &token
	}
	return nil
}
