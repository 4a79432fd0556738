package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/heapdog/heapdog/internal/config"
	"github.com/heapdog/heapdog/internal/domain"
	"github.com/heapdog/heapdog/internal/notify"
	"github.com/heapdog/heapdog/internal/ui"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client := notify.NewClient(cfg.RelayURL, cfg.CookieName, cfg.HTTPTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := session(ctx, client)
	if err != nil {
		return err
	}

	center := notify.NewCenter(client, cfg.StreamURL+"/notifications/subscribe", cfg.PageSize)
	center.Start(ctx, sess)
	defer center.Close()

	program := tea.NewProgram(ui.New(center), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}

	return nil
}

// session resolves the relay session and confirms it against the current-user
// endpoint. A rejected token starts the client signed out; absence of a
// session is a steady state, never a startup failure.
func session(ctx context.Context, client *notify.Client) (notify.Session, error) {
	sess, err := resolveSession(ctx, client)
	if err != nil || !sess.Valid() {
		return sess, err
	}

	user, err := client.Me(ctx, sess)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			slog.Warn("session token rejected, starting signed out")
			return notify.Session{}, nil
		}
		return notify.Session{}, fmt.Errorf("resolve current user: %w", err)
	}

	slog.Info("signed in",
		"username", user.Username,
		"role", user.Role,
		"organization", currentOrganization(user))
	return sess, nil
}

// resolveSession picks the session source: an explicit token when provided,
// otherwise a credential sign-in through the relay.
func resolveSession(ctx context.Context, client *notify.Client) (notify.Session, error) {
	if token := os.Getenv("HEAPDOG_TOKEN"); token != "" {
		return notify.Session{Token: token}, nil
	}

	username := os.Getenv("HEAPDOG_USERNAME")
	password := os.Getenv("HEAPDOG_PASSWORD")
	if username == "" || password == "" {
		return notify.Session{}, nil
	}

	sess, err := client.Signin(ctx, username, password)
	if err != nil {
		return notify.Session{}, fmt.Errorf("sign in: %w", err)
	}
	return sess, nil
}

// currentOrganization names the membership the user is currently switched to.
func currentOrganization(u *domain.User) string {
	if u.CurrentOrganizationID == nil {
		return ""
	}
	for _, m := range u.Organizations {
		if m.ID == *u.CurrentOrganizationID {
			return m.OrgName
		}
	}
	return ""
}
