package cli

import (
	"context"

	"github.com/roomify-app/roomify/internal/client/chat"
)

// Transcript prints the conversation so far.
func (a *App) Transcript() error {
	for _, m := range a.chat.Messages() {
		a.printMessage(m)
	}
	return nil
}

// Chat sends text and waits for the assistant's reply.
func (a *App) Chat(ctx context.Context, text string) error {
	if _, err := a.chat.Send(text); err != nil {
		return a.report(err)
	}
	select {
	case m := <-a.replies:
		a.printMessage(m)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) printMessage(m chat.Message) {
	who := "you"
	if m.Role == chat.RoleAssistant {
		who = "assistant"
	}
	a.printf("%s %s\n", label(who+":"), m.Content)
}
