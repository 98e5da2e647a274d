package cli

import (
	"context"

	"github.com/roomify-app/roomify/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getSecret = GetSecret

func (a *App) credentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// SignUp prompts for an email and password and creates an account. The
// new account is signed in on success.
func (a *App) SignUp(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.sessions.SignUp(ctx, email, string(password)); err != nil {
		return a.report(err)
	}
	a.notifier.Success("Account created, you are signed in")
	return nil
}

// SignIn prompts for credentials and starts a session.
func (a *App) SignIn(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.sessions.SignIn(ctx, email, string(password)); err != nil {
		a.logger.Warn(ctx, "sign in failed", "error", err)
		return a.report(err)
	}
	a.notifier.Success("Signed in")
	return nil
}

// SignOut ends the session. Local state is cleared even when the server
// cannot be reached.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.sessions.SignOut(ctx); err != nil {
		a.logger.Warn(ctx, "server sign out failed", "error", err)
	}
	a.notifier.Success("Signed out")
	return nil
}

// ResetPassword requests a recovery token and, when the user has one,
// sets a new password with it.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.sessions.ResetPassword(ctx, email); err != nil {
		return a.report(err)
	}
	a.notifier.Success("If the account exists, a recovery token has been sent")

	token, err := getSimpleText(a.reader, "Enter recovery token (empty to finish later)", a.out)
	if err != nil || token == "" {
		return nil
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.sessions.ConfirmReset(ctx, token, string(password)); err != nil {
		return a.report(err)
	}
	a.notifier.Success("Password updated, you are signed in")
	return nil
}

// WhoAmI prints the signed-in account.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.backend.CurrentUser(ctx)
	if err != nil {
		return a.report(err)
	}
	a.printf("%s %s\n", label("Signed in as"), u.Email)
	return nil
}
