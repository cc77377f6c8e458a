package domain

import (
	"context"
	"slices"
	"time"
)

// Board types.
const (
	BoardTypeScrum   = "scrum"
	BoardTypeKanban  = "kanban"
	BoardTypeNextGen = "next_gen"
)

// Board visibility.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Board is a kanban/scrum container of lists, scoped to one project, with
// its own membership-set permission model.
type Board struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	Project        string             `json:"project"`
	Type           string             `json:"type"`
	Administrators []string           `json:"administrators"`
	Permissions    BoardPermissions   `json:"permissions"`
	Visibility     string             `json:"visibility"`
	Configuration  BoardConfiguration `json:"configuration"`
	Statistics     BoardStatistics    `json:"statistics"`
	IsActive       bool               `json:"isActive"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// BoardPermissions holds the three capability member sets.
type BoardPermissions struct {
	View  []string `json:"view"`
	Edit  []string `json:"edit"`
	Admin []string `json:"admin"`
}

// BoardConfiguration is stored verbatim and never interpreted against actual
// card state (WIP limits included).
type BoardConfiguration struct {
	Columns      []BoardColumn `json:"columns"`
	QuickFilters []QuickFilter `json:"quickFilters"`
	Swimlanes    Swimlanes     `json:"swimlanes"`
	CardLayout   CardLayout    `json:"cardLayout"`
	WorkingDays  WorkingDays   `json:"workingDays"`
	Estimation   Estimation    `json:"estimation"`
}

type BoardColumn struct {
	Name      string   `json:"name"`
	StatusIDs []string `json:"statusIds"`
	Max       *int     `json:"max,omitempty"` // WIP limit, declared only
	Color     string   `json:"color"`
}

type QuickFilter struct {
	Name        string `json:"name"`
	JQL         string `json:"jql"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
}

type Swimlanes struct {
	Type    string          `json:"type"` // none, assignee, epic, queries
	Queries []SwimlaneQuery `json:"queries"`
}

type SwimlaneQuery struct {
	Name string `json:"name"`
	JQL  string `json:"jql"`
}

type CardLayout struct {
	Fields []string         `json:"fields"`
	Colors CardLayoutColors `json:"colors"`
}

type CardLayoutColors struct {
	IssueType bool `json:"issueType"`
	Priority  bool `json:"priority"`
}

type WorkingDays struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

type Estimation struct {
	Field      string `json:"field"`      // story_points, time_original_estimate, issue_count
	TimeFormat string `json:"timeFormat"` // days, hours
}

// BoardStatistics is a denormalized counter blob, not kept transactionally
// in sync with actual card counts.
type BoardStatistics struct {
	TotalIssues int        `json:"totalIssues"`
	LastViewed  *time.Time `json:"lastViewed,omitempty"`
	ViewCount   int        `json:"viewCount"`
}

// DefaultBoardConfiguration is the configuration applied to new boards:
// three columns, no swimlanes, story-point estimation, Mon-Fri working days.
func DefaultBoardConfiguration() BoardConfiguration {
	return BoardConfiguration{
		Columns: []BoardColumn{
			{Name: "To Do", StatusIDs: []string{"todo"}, Color: "#0052CC"},
			{Name: "In Progress", StatusIDs: []string{"inprogress"}, Color: "#0052CC"},
			{Name: "Done", StatusIDs: []string{"done"}, Color: "#0052CC"},
		},
		QuickFilters: []QuickFilter{},
		Swimlanes:    Swimlanes{Type: "none", Queries: []SwimlaneQuery{}},
		CardLayout:   CardLayout{Fields: []string{}, Colors: CardLayoutColors{IssueType: true, Priority: true}},
		WorkingDays: WorkingDays{
			Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true,
		},
		Estimation: Estimation{Field: "story_points", TimeFormat: "hours"},
	}
}

// CanView reports whether the user may view the board: always true for
// public boards, otherwise membership in any of the four sets.
func (b *Board) CanView(userID string) bool {
	if b.Visibility == VisibilityPublic {
		return true
	}
	return slices.Contains(b.Permissions.View, userID) ||
		slices.Contains(b.Permissions.Edit, userID) ||
		slices.Contains(b.Permissions.Admin, userID) ||
		slices.Contains(b.Administrators, userID)
}

// CanEdit reports whether the user may edit the board. Only the edit and
// admin permission sets count; Administrators is deliberately not consulted
// to keep the predicate identical to the shipped behavior.
func (b *Board) CanEdit(userID string) bool {
	return slices.Contains(b.Permissions.Edit, userID) ||
		slices.Contains(b.Permissions.Admin, userID)
}

// IsAdmin reports whether the user administers the board.
func (b *Board) IsAdmin(userID string) bool {
	return slices.Contains(b.Administrators, userID) ||
		slices.Contains(b.Permissions.Admin, userID)
}

// CanMutate is the precondition shared by list/card mutation paths:
// membership in administrators or the edit permission set.
func (b *Board) CanMutate(userID string) bool {
	return slices.Contains(b.Administrators, userID) ||
		slices.Contains(b.Permissions.Edit, userID)
}

// BoardPatch carries a partial board update. Nil fields are left untouched.
type BoardPatch struct {
	Name           *string
	Description    *string
	Project        *string
	Type           *string
	Visibility     *string
	Administrators []string
	Permissions    *BoardPermissions
	Configuration  *BoardConfiguration
	Statistics     *BoardStatistics
	IsActive       *bool
}

// BoardRepository defines data access for boards.
type BoardRepository interface {
	Create(ctx context.Context, board *Board) error
	GetByID(ctx context.Context, id string) (*Board, error)
	ListForUser(ctx context.Context, userID string) ([]*Board, error)
	ListByProject(ctx context.Context, projectID string) ([]*Board, error)
	Update(ctx context.Context, id string, patch BoardPatch) (*Board, error)
	Delete(ctx context.Context, id string) error
}
