package models

import (
	"time"

	"github.com/julianstephens/habitchain/internal/constants"
)

// Habit represents a recurring practice owned by one account
type Habit struct {
	ID              string              `json:"id"`
	OwnerID         string              `json:"owner_id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	Category        string              `json:"category"`
	Frequency       constants.Frequency `json:"frequency"`
	ReminderTime    string              `json:"reminder_time"` // HH:MM format, may be empty
	RequirePhoto    bool                `json:"require_photo"`
	IsPublic        bool                `json:"is_public"`
	Streak          int                 `json:"streak"`
	TodayCompleted  bool                `json:"today_completed"`
	WeekProgress    int                 `json:"week_progress"` // 0-100, stored as-is
	ChainMembers    int                 `json:"chain_members"`
	Points          int                 `json:"points"`
	CreatedAt       time.Time           `json:"created_at"`
	LastCompletedAt *time.Time          `json:"last_completed_at,omitempty"`
}

// HabitFields are the user-supplied fields of a new habit
type HabitFields struct {
	Name         string
	Description  string
	Category     string
	Frequency    constants.Frequency
	ReminderTime string
	RequirePhoto bool
	IsPublic     bool
}

// Completion records that a habit was done on a calendar day
type Completion struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	Day         string    `json:"day"` // YYYY-MM-DD format
	CompletedAt time.Time `json:"completed_at"`
}
