package main

import (
	"context"
	"time"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/session"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{Email: cmd.String("email"), Password: cmd.String("password")}

	r.logger.Info("signing in", "email", creds.Email)
	user, err := r.engine.Login(ctx, creds)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}
	return r.writePlain("✓ Signed in as %s (%s)\n", user.Username, user.Email)
}

// AuthRegister creates an account and signs it in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	reg := models.Registration{
		Email:    cmd.String("email"),
		Username: cmd.String("username"),
		Name:     cmd.String("name"),
		Password: cmd.String("password"),
	}

	user, err := r.engine.Register(ctx, reg)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Account created, signed in as %s\n", user.Username)
}

// AuthLogout clears the stored session. The server is told when reachable.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.store.State().IsAuthenticated() {
		return r.writePlain("Not signed in\n")
	}
	if err := r.engine.Logout(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the stored session without calling the API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	sess := r.session.Storage().Read()
	if !sess.Valid() {
		return r.writePlain("✗ Not signed in\n")
	}

	expiry := session.Expiry(sess.AccessToken)
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated": true,
			"user":          sess.User,
			"subject":       session.Subject(sess.AccessToken),
			"expiresAt":     expiry,
		}, true)
	}

	r.writePlain("✓ Signed in\n")
	if sess.User != nil {
		r.writePlain("User: %s (%s)\n", sess.User.Username, sess.User.Email)
	}
	switch {
	case expiry.IsZero():
		r.writePlain("Access token: no expiry claim\n")
	case time.Now().After(expiry):
		r.writePlain("Access token: expired %s (refreshed on next request)\n", expiry.Local().Format(time.RFC1123))
	default:
		r.writePlain("Access token: valid until %s\n", expiry.Local().Format(time.RFC1123))
	}
	return nil
}

// AuthProfile fetches the signed-in profile, refreshing tokens if needed.
func (r *Runner) AuthProfile(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	user, err := r.engine.Profile(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}
	r.writePlain("%s (@%s)\n", user.Name, user.Username)
	r.writePlain("Email: %s\n", user.Email)
	if user.Bio != "" {
		r.writePlain("Bio: %s\n", user.Bio)
	}
	return nil
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, sign out and inspect the stored session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Sources: cli.EnvVars("MRX_PASSWORD")},
					jsonFlag(),
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Sources: cli.EnvVars("MRX_PASSWORD")},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and clear stored credentials",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the stored session",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:    "profile",
				Aliases: []string{"whoami"},
				Usage:   "Fetch the signed-in profile",
				Flags:   []cli.Flag{jsonFlag()},
				Action:  r.AuthProfile,
			},
		},
	}
}
