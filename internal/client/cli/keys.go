package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/roomify-app/roomify/internal/client/api"
	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/cryptox"
)

const timeLayout = "2006-01-02 15:04"

// ListKeys prints the stored keys, masked.
func (a *App) ListKeys(ctx context.Context) error {
	keys, err := a.backend.ListKeys(ctx)
	if err != nil {
		return a.report(err)
	}
	a.printKeys(keys)
	return nil
}

func (a *App) printKeys(keys []api.KeyView) {
	if len(keys) == 0 {
		a.printf("%s\n", muted("No API keys stored"))
		return
	}
	a.printf("%s\n", title("API keys"))
	for _, k := range keys {
		state := "inactive"
		if k.IsActive {
			state = "active"
		}
		a.printf("  %s  %-9s %-16s %-8s %s\n", k.ID, k.Provider, k.MaskedKey, state, k.CreatedAt.Local().Format(timeLayout))
	}
}

// AddKey reads a key for provider without echo, checks its format and
// stores it as the active one.
func (a *App) AddKey(ctx context.Context, provider string) error {
	p, err := common.ParseProvider(provider)
	if err != nil {
		return a.report(fmt.Errorf("%w: %q", err, provider))
	}

	secret, err := getSecret("Enter API key", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	if !cryptox.ValidateFormat(string(secret), p) {
		return a.report(common.ErrInvalidKeyFormat)
	}

	keys, err := a.backend.AddKey(ctx, string(secret), p)
	if err != nil {
		return a.report(err)
	}
	a.notifier.Success("API key saved")
	a.printKeys(keys)
	return nil
}

func (a *App) RemoveKey(ctx context.Context, id string) error {
	if err := a.backend.RemoveKey(ctx, id); err != nil {
		return a.report(err)
	}
	a.notifier.Success("API key removed")
	return nil
}

// Usage prints the most recent feature usage, newest first.
func (a *App) Usage(ctx context.Context, limit int) error {
	entries, err := a.backend.RecentUsage(ctx, limit)
	if err != nil {
		return a.report(err)
	}
	if len(entries) == 0 {
		a.printf("%s\n", muted("No usage yet"))
		return nil
	}
	a.printf("%s\n", title("Recent usage"))
	for _, e := range entries {
		tokens := "-"
		if e.TokensUsed != nil {
			tokens = fmt.Sprint(*e.TokensUsed)
		}
		a.printf("  %s  %-10s %s\n", e.CreatedAt.In(time.Local).Format(timeLayout), e.FeatureUsed, tokens)
	}
	return nil
}
