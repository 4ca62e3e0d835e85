package habits

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitchain/internal/app"
	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/utils"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	List     HabitListCmd     `cmd:"" help:"List your habits."`
	Complete HabitCompleteCmd `cmd:"" help:"Mark a habit as done for today."`
	Log      HabitLogCmd      `cmd:"" help:"Show habit log (ASCII history)."`
}

type HabitAddCmd struct {
	Name         string `arg:"" help:"Habit name."`
	Description  string `help:"Optional description."`
	Category     string `help:"Category (fitness, learning, mindfulness, health, creativity, productivity)."`
	Frequency    string `help:"How often (daily, weekdays, custom)." default:"daily" enum:"daily,weekdays,custom"`
	Reminder     string `help:"Reminder time in HH:MM format."`
	RequirePhoto bool   `help:"Require a photo as proof of completion."`
	Public       bool   `help:"Share the habit publicly."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	a, user, err := ctx.RequireUser()
	if err != nil {
		return cli.UserError(err)
	}

	habit, err := a.CreateHabit(user.ID, models.HabitFields{
		Name:         c.Name,
		Description:  c.Description,
		Category:     c.Category,
		Frequency:    constants.Frequency(c.Frequency),
		ReminderTime: c.Reminder,
		RequirePhoto: c.RequirePhoto,
		IsPublic:     c.Public,
	})
	if err != nil {
		return cli.UserError(err)
	}

	ctx.Printf("Added habit: %s (%s)\n", habit.Name, habit.ID)
	return nil
}

type HabitListCmd struct {
	JSON bool `help:"Print habits as JSON."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	a, user, err := ctx.RequireUser()
	if err != nil {
		return cli.UserError(err)
	}

	habits, err := a.ListHabits(user.ID)
	if err != nil {
		return cli.UserError(err)
	}

	if c.JSON {
		b, err := json.MarshalIndent(habits, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal habits: %w", err)
		}
		ctx.Println(string(b))
		return nil
	}

	if len(habits) == 0 {
		ctx.Println("No habits found. Add one with 'habitchain habit add'.")
		return nil
	}

	for _, h := range habits {
		status := "[ ]"
		if h.TodayCompleted {
			status = "[x]"
		}
		ctx.Printf("%s %-24s %-13s 🔥 %-4d ⭐ %-5d %s\n", status, h.Name, h.Category, h.Streak, h.Points, h.ID)
	}
	return nil
}

type HabitCompleteCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitCompleteCmd) Run(ctx *cli.Context) error {
	a, user, err := ctx.RequireUser()
	if err != nil {
		return cli.UserError(err)
	}

	habit, err := resolveHabit(a, user.ID, c.Habit)
	if err != nil {
		return err
	}

	updated, err := a.CompleteHabit(habit.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyCompletedToday) {
			ctx.Printf("%s: %s\n", updated.Name, apperrors.Message(err))
			return nil
		}
		return cli.UserError(err)
	}

	ctx.Printf("Completed %s! Streak: %d, points: %d (+%d)\n",
		updated.Name, updated.Streak, updated.Points, constants.PointsPerCompletion)
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for a specific habit only (ID or name)."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	a, user, err := ctx.RequireUser()
	if err != nil {
		return cli.UserError(err)
	}

	var selected []models.Habit
	if c.Habit != "" {
		h, err := resolveHabit(a, user.ID, c.Habit)
		if err != nil {
			return err
		}
		selected = []models.Habit{h}
	} else {
		selected, err = a.ListHabits(user.ID)
		if err != nil {
			return cli.UserError(err)
		}
	}

	if len(selected) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	now := a.Habits.Clock()
	loc := a.Habits.Location()
	days := make([]string, c.Days)
	for i := range days {
		days[i] = utils.DaysAgo(now, c.Days-1-i, loc)
	}

	ctx.Printf("Habit log (last %d days):\n\n", c.Days)

	const nameWidth = 20
	ctx.Printf("%-*s", nameWidth, "Habit")
	for _, day := range days {
		// MM/DD
		ctx.Printf(" %5s", day[5:7]+"/"+day[8:10])
	}
	ctx.Println()
	ctx.Println(strings.Repeat("-", nameWidth+6*len(days)))

	for _, h := range selected {
		completions, err := a.History(h.ID, c.Days)
		if err != nil {
			return cli.UserError(err)
		}
		done := make(map[string]bool, len(completions))
		for _, comp := range completions {
			done[comp.Day] = true
		}

		name := h.Name
		if len(name) > nameWidth {
			name = name[:nameWidth-3] + "..."
		}
		ctx.Printf("%-*s", nameWidth, name)
		for _, day := range days {
			if done[day] {
				ctx.Printf("  x   ")
			} else {
				ctx.Printf("  .   ")
			}
		}
		ctx.Println()
	}
	return nil
}

type SummaryCmd struct{}

func (c *SummaryCmd) Run(ctx *cli.Context) error {
	a, user, err := ctx.RequireUser()
	if err != nil {
		return cli.UserError(err)
	}

	sum, err := a.Summary(user.ID)
	if err != nil {
		return cli.UserError(err)
	}

	ctx.Printf("Hi %s!\n\n", user.Name)
	ctx.Printf("  Habits:          %d\n", sum.Total)
	ctx.Printf("  Done today:      %d/%d\n", sum.CompletedToday, sum.Total)
	ctx.Printf("  Pending:         %d\n", sum.Pending)
	ctx.Printf("  Total streak:    %d\n", sum.TotalStreak)
	ctx.Printf("  Total points:    %d\n", sum.TotalPoints)
	return nil
}

// resolveHabit finds one of the owner's habits by exact ID, then by
// case-insensitive name
func resolveHabit(a *app.App, ownerID, ref string) (models.Habit, error) {
	habits, err := a.ListHabits(ownerID)
	if err != nil {
		return models.Habit{}, cli.UserError(err)
	}

	var byName []models.Habit
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
		if strings.EqualFold(h.Name, ref) {
			byName = append(byName, h)
		}
	}

	switch len(byName) {
	case 0:
		return models.Habit{}, cli.UserError(fmt.Errorf("habit %q: %w", ref, apperrors.ErrNotFound))
	case 1:
		return byName[0], nil
	default:
		return models.Habit{}, fmt.Errorf("%d habits are named %q, use the habit ID instead", len(byName), ref)
	}
}
