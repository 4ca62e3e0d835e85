package settings

import (
	"fmt"
	"sort"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/constants"
)

type SettingsCmd struct {
	List SettingsListCmd `cmd:"" default:"1" help:"List current settings."`
	Set  SettingsSetCmd  `cmd:"" help:"Update settings."`
}

type SettingsListCmd struct{}

func (c *SettingsListCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetAllSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx.Println("Current Settings:")
	for _, k := range keys {
		ctx.Printf("  %-22s %s\n", k+":", settings[k])
	}
	ctx.Printf("\nStorage: %s\n", ctx.Store.GetConfigPath())
	return nil
}

type SettingsSetCmd struct {
	Timezone           *string `help:"IANA timezone that decides where a calendar day starts (or 'Local')."`
	OnboardingComplete *bool   `help:"Mark the onboarding screens as seen."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Core()
	if err != nil {
		return err
	}

	updated := false
	if c.Timezone != nil {
		if err := a.SetTimezone(*c.Timezone); err != nil {
			return fmt.Errorf("failed to set timezone: %w", err)
		}
		updated = true
	}
	if c.OnboardingComplete != nil {
		if err := ctx.Store.SetSetting(constants.SettingOnboardingComplete, fmt.Sprint(*c.OnboardingComplete)); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		updated = true
	}

	if updated {
		ctx.Println("Settings updated successfully.")
	} else {
		ctx.Println("No changes specified. Use 'settings list' to view settings or flags to update them.")
	}
	return nil
}
