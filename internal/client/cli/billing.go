package cli

import (
	"context"
	"errors"

	"github.com/roomify-app/roomify/internal/client/api"
	"github.com/roomify-app/roomify/internal/common"
)

const (
	defaultSuccessURL = "https://roomify.app/success"
	defaultCancelURL  = "https://roomify.app/pricing"
)

// Pricing prints the plan catalog and, when signed in, the current plan.
func (a *App) Pricing(ctx context.Context) error {
	products, err := a.backend.Products(ctx)
	if err != nil {
		return a.report(err)
	}
	a.printf("%s\n", title("Plans"))
	for _, p := range products {
		a.printf("  %-12s $%7.2f  %-12s %s  %s\n", p.Name, p.Price, p.Mode, p.PriceID, muted(p.Description))
	}

	if !a.isSignedIn() {
		return nil
	}
	plan, err := a.backend.ActivePlan(ctx)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		a.printf("%s %s\n", label("Current plan:"), "none")
	case err != nil:
		return a.report(err)
	default:
		a.printf("%s %s\n", label("Current plan:"), plan.Name)
	}
	return nil
}

// Subscription prints the caller's subscription projection.
func (a *App) Subscription(ctx context.Context) error {
	sub, err := a.backend.Subscription(ctx)
	if err != nil {
		return a.report(err)
	}
	if sub == nil {
		a.printf("%s\n", muted("No subscription"))
		return nil
	}
	a.printf("%s %s\n", label("Status:"), sub.Status)
	if sub.CurrentPeriodEnd != nil {
		renews := "Renews"
		if sub.CancelAtPeriodEnd {
			renews = "Ends"
		}
		a.printf("%s %s\n", label(renews+":"), sub.CurrentPeriodEnd.Local().Format(timeLayout))
	}
	if sub.PaymentMethodBrand != nil && sub.PaymentMethodLast4 != nil {
		a.printf("%s %s •••• %s\n", label("Card:"), *sub.PaymentMethodBrand, *sub.PaymentMethodLast4)
	}
	return nil
}

// Checkout starts a hosted checkout for priceID and prints the payment URL.
func (a *App) Checkout(ctx context.Context, priceID string) error {
	url, err := a.backend.Checkout(ctx, api.CheckoutRequest{
		PriceID:    priceID,
		SuccessURL: defaultSuccessURL,
		CancelURL:  defaultCancelURL,
	})
	if err != nil {
		return a.report(err)
	}
	a.printf("%s %s\n", label("Complete your purchase at:"), url)
	return nil
}
