package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/utils"
)

const (
	authModeLogin  = "login"
	authModeSignup = "signup"
)

type AuthFormModel struct {
	Mode     string
	Name     string
	Email    string
	Password string
}

type HabitFormModel struct {
	Name         string
	Description  string
	Category     string
	Frequency    string
	Reminder     string
	RequirePhoto bool
	IsPublic     bool
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func NewAuthForm(fm *AuthFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Welcome to habitchain").
				Options(
					huh.NewOption("Log in", authModeLogin),
					huh.NewOption("Create an account", authModeSignup),
				).
				Value(&fm.Mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(required("name")),
		).WithHideFunc(func() bool { return fm.Mode != authModeSignup }),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&fm.Email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fm.Password).
				Validate(required("password")),
		),
	)
}

func NewHabitForm(fm *HabitFormModel) *huh.Form {
	categories := make([]huh.Option[string], 0, len(constants.Categories))
	for _, c := range constants.Categories {
		categories = append(categories, huh.NewOption(c, c))
	}
	frequencies := make([]huh.Option[string], 0, len(constants.Frequencies))
	for _, f := range constants.Frequencies {
		frequencies = append(frequencies, huh.NewOption(string(f), string(f)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit name").
				Value(&fm.Name).
				Validate(required("name")),
			huh.NewText().
				Title("Description").
				Value(&fm.Description),
			huh.NewSelect[string]().
				Title("Category").
				Options(categories...).
				Value(&fm.Category),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(frequencies...).
				Value(&fm.Frequency),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Reminder time (HH:MM, optional)").
				Value(&fm.Reminder).
				Validate(func(s string) error {
					if s != "" && !utils.ValidateTimeFormat(s) {
						return errors.New("use HH:MM")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Require a photo as proof?").
				Value(&fm.RequirePhoto),
			huh.NewConfirm().
				Title("Make it public?").
				Value(&fm.IsPublic),
		),
	)
}
