package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Account roles.
const (
	RoleJobseeker = "jobseeker"
	RoleEmployer  = "employer"
)

// Company team roles.
const (
	CompanyRoleAdmin         = "admin"
	CompanyRoleRecruiter     = "recruiter"
	CompanyRoleHiringManager = "hiring_manager"
)

// Swipe directions. A pair of users produces at most two swipe rows, one
// per direction.
const (
	DirectionJobseeker = "jobseeker" // jobseeker → company
	DirectionEmployer  = "employer"  // company → jobseeker
)

// Draft types, inferred by the draft engine.
const (
	DraftTypeCreate = "create"
	DraftTypeEdit   = "edit"
)

// Invite statuses. Accepted, expired and cancelled are terminal.
const (
	InviteStatusPending   = "pending"
	InviteStatusAccepted  = "accepted"
	InviteStatusExpired   = "expired"
	InviteStatusCancelled = "cancelled"
)

// Job posting statuses.
const (
	JobStatusActive = "active"
	JobStatusPaused = "paused"
	JobStatusClosed = "closed"
)

// ParseJobStatus converts a raw string to a posting status, returning an
// error for unknown values.
func ParseJobStatus(s string) (string, error) {
	switch s {
	case JobStatusActive, JobStatusPaused, JobStatusClosed:
		return s, nil
	}
	return "", fmt.Errorf("unknown job posting status %q", s)
}

// ValidCompanyRole reports whether s is a known team role.
func ValidCompanyRole(s string) bool {
	switch s {
	case CompanyRoleAdmin, CompanyRoleRecruiter, CompanyRoleHiringManager:
		return true
	}
	return false
}

// SliderMap is a preference vector: slider identifier → position in [0,100].
// Stored as a JSON text column.
type SliderMap map[string]int

func (m SliderMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *SliderMap) Scan(src any) error {
	return scanJSON(src, m)
}

// CompanySlider is one of a company's (at most three) slider selections,
// with the side of the scale the company presents as preferred.
type CompanySlider struct {
	ID            string `json:"id" validate:"required"`
	Value         int    `json:"value" validate:"min=0,max=100"`
	PreferredSide string `json:"preferredSide" validate:"oneof=left right"`
}

type CompanySliders []CompanySlider

func (s CompanySliders) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *CompanySliders) Scan(src any) error {
	return scanJSON(src, s)
}

// StringList stores an ordered list of strings as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(src any) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	}
	return fmt.Errorf("unsupported column type %T", src)
}

// User is an account on either side of the marketplace. Employer accounts
// may be linked to a Company with a team role.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	Name         string `gorm:"size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:16;not null"`
	// CompanyName is the free-text name the employer typed at signup,
	// used as a fallback when a create-draft omits one.
	CompanyName string  `gorm:"size:128"`
	CompanyID   *uint64 `gorm:"index"`
	CompanyRole string  `gorm:"size:32"`
	Active      bool    `gorm:"default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// JobseekerProfile holds the structured attributes and slider preference
// vector for a jobseeker account.
type JobseekerProfile struct {
	UserID         uint64    `gorm:"primaryKey"`
	Headline       string    `gorm:"size:255"`
	Education      string    `gorm:"size:255"`
	Location       string    `gorm:"size:128"`
	Industry       string    `gorm:"size:128"`
	OpenToRelocate bool      `gorm:"default:false"`
	Sliders        SliderMap `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Company is the canonical employer-side profile. At most three slider
// selections are kept; enforced at the service layer.
type Company struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement"`
	Name        string         `gorm:"size:128;not null"`
	Industry    string         `gorm:"size:128"`
	Size        string         `gorm:"size:64"`
	Location    string         `gorm:"size:128"`
	Description string         `gorm:"type:text"`
	WebsiteURL  string         `gorm:"size:255"`
	LogoURL     string         `gorm:"size:255"`
	Sliders     CompanySliders `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

// Swipe is a one-directional expression of interest between a jobseeker and
// a company.
//
// Composite PK: (JobseekerID, CompanyID, Direction)
//   - Ensures a single row per pair and direction (overwrite guarantee).
//
// Index:
//   - idx_liked_you(jobseeker_id, direction, interested, updated_at DESC)
//     Optimizes "employers interested in you" lists.
type Swipe struct {
	JobseekerID uint64 `gorm:"primaryKey;index:idx_liked_you,priority:1"`
	CompanyID   uint64 `gorm:"primaryKey"`
	Direction   string `gorm:"primaryKey;size:16;index:idx_liked_you,priority:2"`
	// ActorID is the user who recorded the swipe. On the employer side this
	// is the acting team member, not the company.
	ActorID    uint64    `gorm:"not null"`
	Interested bool      `gorm:"not null;index:idx_liked_you,priority:3"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime;index:idx_liked_you,priority:4,sort:desc"`
}

// Match is the bidirectional-agreement record. The unique index on
// (jobseeker_id, company_id) is the concurrency guard: concurrent
// resolutions race on the insert and the loser reads the winner's row.
//
// Lifecycle fields are independent flags/timestamps, not a strict single
// state machine; several can be set at once.
type Match struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	JobseekerID uint64 `gorm:"not null;uniqueIndex:idx_match_pair,priority:1"`
	CompanyID   uint64 `gorm:"not null;uniqueIndex:idx_match_pair,priority:2"`
	Status      string `gorm:"size:16;not null;default:active"`

	JobsSharedAt         *time.Time
	InterviewScheduledAt *time.Time
	InterviewType        string `gorm:"size:32"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// MatchJob attaches a shared job posting to a match. The composite PK makes
// re-sharing idempotent. Interested is nil until the jobseeker responds.
type MatchJob struct {
	MatchID      uint64 `gorm:"primaryKey"`
	JobPostingID uint64 `gorm:"primaryKey"`
	Interested   *bool
	RespondedAt  *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// JobPosting is a company-owned opening.
type JobPosting struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement"`
	CompanyID        uint64     `gorm:"index;not null"`
	CreatedBy        uint64     `gorm:"not null"`
	Title            string     `gorm:"size:255;not null"`
	Description      string     `gorm:"type:text"`
	Status           string     `gorm:"size:16;not null;default:active"`
	Requirements     StringList `gorm:"type:text"`
	Responsibilities StringList `gorm:"type:text"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
}

// CompanyDraft is an in-progress company profile edit.
//
// Composite PK: (UserID, CompanyID), with CompanyID = 0 while the user has
// no company yet. Upsert-on-conflict keeps at most one active draft per
// editing context; the row is deleted the moment it is applied.
type CompanyDraft struct {
	UserID     uint64    `gorm:"primaryKey"`
	CompanyID  uint64    `gorm:"primaryKey"`
	DraftType  string    `gorm:"size:16;not null"`
	DraftData  string    `gorm:"type:text;not null"`
	Step       int       `gorm:"not null;default:0"`
	LastActive time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// CompanyInvite is an email invitation to join a company's team.
type CompanyInvite struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CompanyID uint64    `gorm:"index;not null"`
	Email     string    `gorm:"size:128;not null"`
	Role      string    `gorm:"size:32;not null"`
	Token     string    `gorm:"uniqueIndex;size:64;not null"`
	Status    string    `gorm:"size:16;not null;default:pending;index"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedBy uint64    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// CompanyFields is the JSON shape shared by company create/update payloads
// and draft snapshots. Drafts store it marshaled in CompanyDraft.DraftData;
// each save is a whole-document overwrite.
type CompanyFields struct {
	Name        string         `json:"name"`
	Industry    string         `json:"industry"`
	Size        string         `json:"size"`
	Location    string         `json:"location"`
	Description string         `json:"description"`
	WebsiteURL  string         `json:"websiteUrl"`
	LogoURL     string         `json:"logoUrl"`
	Sliders     CompanySliders `json:"sliders"`
}
