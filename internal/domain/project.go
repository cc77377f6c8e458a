package domain

import (
	"context"
	"slices"
	"time"
)

// Project statuses.
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Project (and project update) priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Project update types.
const (
	UpdateTypeStatus        = "status"
	UpdateTypeMilestone     = "milestone"
	UpdateTypeNote          = "note"
	UpdateTypeMemberAdded   = "member_added"
	UpdateTypeMemberRemoved = "member_removed"
	UpdateTypeFileUpload    = "file_upload"
	UpdateTypeTaskCompleted = "task_completed"
	UpdateTypeGeneral       = "general"
)

// Project is the top-level container. Its activity log is embedded in the
// project document, append-only, never edited or reordered.
type Project struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	Progress    int             `json:"progress"` // 0-100
	CreatedBy   string          `json:"createdBy"`
	Members     []string        `json:"members"`
	Updates     []ProjectUpdate `json:"updates"`
	Tags        []string        `json:"tags"`
	IsArchived  bool            `json:"isArchived"`
	Settings    ProjectSettings `json:"settings"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProjectSettings is stored with the project but not enforced by handlers.
type ProjectSettings struct {
	AllowMemberUpdates bool `json:"allowMemberUpdates"`
	RequireApproval    bool `json:"requireApproval"`
	EmailNotifications bool `json:"emailNotifications"`
}

// DefaultProjectSettings returns the settings applied at creation.
func DefaultProjectSettings() ProjectSettings {
	return ProjectSettings{AllowMemberUpdates: true, EmailNotifications: true}
}

// ProjectUpdate is one immutable entry in a project's activity log.
type ProjectUpdate struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	UpdatedBy   string    `json:"updatedBy"`
	Priority    string    `json:"priority"`
	Tags        []string  `json:"tags"`
	IsVisible   bool      `json:"isVisible"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CanAccess reports whether the user is the creator or a listed member.
// Projects are visible only to those two groups.
func (p *Project) CanAccess(userID string) bool {
	return p.CreatedBy == userID || slices.Contains(p.Members, userID)
}

// ProjectRepository defines data access for projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	ListForUser(ctx context.Context, userID string) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	AppendUpdate(ctx context.Context, projectID string, update ProjectUpdate) error
	Delete(ctx context.Context, id string) error
}
