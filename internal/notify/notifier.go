// Package notify bridges in-process domain events to the real-time side
// channel. Delivery is fire-and-forget: the state mutations that produced
// an event are already committed, so publish failures are only logged.
package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/events"
)

// Envelope is the stable payload shape pushed to clients.
type Envelope struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Notifier struct {
	appCtx *app.AppContext
}

func New(appCtx *app.AppContext) *Notifier {
	return &Notifier{appCtx: appCtx}
}

// Start subscribes to the domain event topics. Handlers run async so a
// slow Redis publish never stalls the request that produced the event.
func (n *Notifier) Start() error {
	if err := n.appCtx.Bus.SubscribeAsync(events.MatchCreatedTopic, n.onMatchCreated, false); err != nil {
		return err
	}
	if err := n.appCtx.Bus.SubscribeAsync(events.JobsSharedTopic, n.onJobsShared, false); err != nil {
		return err
	}
	if err := n.appCtx.Bus.SubscribeAsync(events.JobInterestTopic, n.onJobInterest, false); err != nil {
		return err
	}
	return n.appCtx.Bus.SubscribeAsync(events.InterviewScheduledTopic, n.onInterviewScheduled, false)
}

func (n *Notifier) onMatchCreated(e events.MatchCreated) {
	env := Envelope{Type: "match_created", Payload: map[string]any{
		"matchId":     e.MatchID,
		"jobseekerId": e.JobseekerID,
		"companyId":   e.CompanyID,
	}}
	n.push(e.JobseekerID, env)
}

func (n *Notifier) onJobsShared(e events.JobsShared) {
	env := Envelope{Type: "job_shared", Payload: map[string]any{
		"matchId":       e.MatchID,
		"jobPostingIds": e.JobPostingIDs,
	}}
	n.push(e.JobseekerID, env)
}

func (n *Notifier) onJobInterest(e events.JobInterest) {
	env := Envelope{Type: "job_interest", Payload: map[string]any{
		"matchId":      e.MatchID,
		"jobPostingId": e.JobPostingID,
		"interested":   e.Interested,
	}}
	// company-side members subscribe on the company channel
	n.pushChannel(channelForCompany(e.CompanyID), env)
}

func (n *Notifier) onInterviewScheduled(e events.InterviewScheduled) {
	env := Envelope{Type: "interview_scheduled", Payload: map[string]any{
		"matchId":       e.MatchID,
		"scheduledAt":   e.ScheduledAt,
		"interviewType": e.InterviewType,
	}}
	n.push(e.JobseekerID, env)
	n.pushChannel(channelForCompany(e.CompanyID), env)
}

func (n *Notifier) push(userID uint64, env Envelope) {
	n.pushChannel(n.appCtx.RedisCache.ChannelForUser(userID), env)
}

func (n *Notifier) pushChannel(channel string, env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		n.appCtx.Logger.Error("failed to marshal notification", "type", env.Type, "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.appCtx.RedisCache.Publish(ctx, channel, b); err != nil {
		n.appCtx.Logger.Warn("failed to publish notification", "channel", channel, "type", env.Type, "err", err)
	}
}

func channelForCompany(companyID uint64) string {
	return "notify:company:" + strconv.FormatUint(companyID, 10)
}
