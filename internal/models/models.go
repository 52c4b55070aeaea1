package models

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates absence of a record.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates uniqueness or state conflict.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates business rule violation.
	ErrValidation = errors.New("validation error")
	// ErrForbidden indicates insufficient role or ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrNotRegistered indicates the acting user has never called /start.
	ErrNotRegistered = errors.New("not registered")
)

type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

func roleRank(role UserRole) int {
	switch role {
	case RoleSuperAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether the role satisfies the required minimum tier,
// ordering user < admin < super_admin.
func (r UserRole) AtLeast(min UserRole) bool {
	return roleRank(r) >= roleRank(min)
}

type User struct {
	ID           int64     `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	FullName     string    `json:"full_name"`
	Username     *string   `json:"username,omitempty"`
	Role         UserRole  `json:"role"`
	AddedBy      *int64    `json:"added_by,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Game struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	MinPlayers *int   `json:"min_players,omitempty"`
	MaxPlayers *int   `json:"max_players,omitempty"`
}

type GameFormat struct {
	ID                int64  `json:"id"`
	GameID            int64  `json:"game_id"`
	FormatName        string `json:"format_name"`
	MaxPlayersPerTeam int    `json:"max_players_per_team"`
}

type TournamentStatus string

const (
	TournamentPending  TournamentStatus = "pending"
	TournamentApproved TournamentStatus = "approved"
	TournamentRejected TournamentStatus = "rejected"
)

type Tournament struct {
	ID              int64            `json:"id"`
	GameID          int64            `json:"game_id"`
	FormatID        *int64           `json:"format_id,omitempty"`
	Name            string           `json:"name"`
	LogoPath        string           `json:"logo_path"`
	StartDate       time.Time        `json:"start_date"`
	Description     string           `json:"description"`
	RegulationsPath string           `json:"regulations_path"`
	IsActive        bool             `json:"is_active"`
	Status          TournamentStatus `json:"status"`
	CreatedBy       int64            `json:"created_by"`
	CreatedAt       time.Time        `json:"created_at"`
}

type TournamentPatch struct {
	Name        *string
	LogoPath    *string
	Description *string
	StartDate   *time.Time
	IsActive    *bool
	Status      *TournamentStatus
}

type TeamStatus string

const (
	TeamPending  TeamStatus = "pending"
	TeamApproved TeamStatus = "approved"
)

type Team struct {
	ID           int64      `json:"id"`
	TournamentID int64      `json:"tournament_id"`
	Name         string     `json:"team_name"`
	LogoPath     string     `json:"logo_path"`
	CaptainTgID  int64      `json:"captain_tg_id"`
	Status       TeamStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

type TeamPatch struct {
	Name     *string
	LogoPath *string
	Status   *TeamStatus
}

// Player links a team to a registered user by telegram id.
type Player struct {
	ID           int64 `json:"id"`
	TeamID       int64 `json:"team_id"`
	UserID       int64 `json:"user_id"`
	IsSubstitute bool  `json:"is_substitute"`
}

// UserSession is the single persisted wizard slot per telegram user.
type UserSession struct {
	UserID      int64
	CurrentFlow *string
	FlowState   []byte
	UpdatedAt   time.Time
}

// Statistics is the admin-panel counters snapshot.
type Statistics struct {
	Users             int `json:"users"`
	ActiveTournaments int `json:"active_tournaments"`
	Teams             int `json:"teams"`
}
