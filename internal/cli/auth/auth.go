package auth

import (
	"fmt"

	"github.com/julianstephens/habitchain/internal/cli"
)

type SignupCmd struct {
	Name     string `arg:"" help:"Display name."`
	Email    string `arg:"" help:"Email address, used to log in."`
	Password string `help:"Password. Prompted for when omitted." env:"HABITCHAIN_PASSWORD"`
}

func (c *SignupCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Core()
	if err != nil {
		return err
	}

	password, err := passwordOrPrompt(c.Password, "Choose a password")
	if err != nil {
		return err
	}

	profile, err := a.Signup(c.Name, c.Email, password)
	if err != nil {
		return cli.UserError(err)
	}

	ctx.Printf("Welcome, %s! You are now logged in as %s.\n", profile.Name, profile.Email)
	return nil
}

type LoginCmd struct {
	Email    string `arg:"" help:"Email address."`
	Password string `help:"Password. Prompted for when omitted." env:"HABITCHAIN_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Core()
	if err != nil {
		return err
	}

	password, err := passwordOrPrompt(c.Password, "Password")
	if err != nil {
		return err
	}

	profile, err := a.Login(c.Email, password)
	if err != nil {
		return cli.UserError(err)
	}

	ctx.Printf("Logged in as %s (%s).\n", profile.Name, profile.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Core()
	if err != nil {
		return err
	}
	if a.CurrentUser() == nil {
		ctx.Println("Not logged in.")
		return nil
	}
	if err := a.Logout(); err != nil {
		return cli.UserError(err)
	}
	ctx.Println("Logged out.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	_, user, err := ctx.RequireUser()
	if err != nil {
		return cli.UserError(err)
	}
	ctx.Printf("%s <%s>\n", user.Name, user.Email)
	ctx.Printf("  ID:           %s\n", user.ID)
	ctx.Printf("  Member since: %s\n", user.CreatedAt.Local().Format("2006-01-02"))
	return nil
}

func passwordOrPrompt(password, title string) (string, error) {
	if password != "" {
		return password, nil
	}
	p, err := cli.PromptPassword(title)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return p, nil
}
