// Package events declares the in-process event topics published by the
// services and consumed by the notifier.
package events

var (
	MatchCreatedTopic       = "MatchCreatedEvent"
	JobsSharedTopic         = "JobsSharedEvent"
	JobInterestTopic        = "JobInterestEvent"
	InterviewScheduledTopic = "InterviewScheduledEvent"
	InviteCreatedTopic      = "InviteCreatedEvent"
)

type MatchCreated struct {
	MatchID     uint64
	JobseekerID uint64
	CompanyID   uint64
}

type JobsShared struct {
	MatchID       uint64
	JobseekerID   uint64
	JobPostingIDs []uint64
}

type JobInterest struct {
	MatchID      uint64
	CompanyID    uint64
	JobPostingID uint64
	Interested   bool
}

type InterviewScheduled struct {
	MatchID       uint64
	JobseekerID   uint64
	CompanyID     uint64
	ScheduledAt   int64 // unix millis
	InterviewType string
}

type InviteCreated struct {
	InviteID  uint64
	CompanyID uint64
	Email     string
}
