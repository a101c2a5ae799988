package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-hyperclient/internal/cli"
	"github.com/goliatone/go-hyperclient/internal/config"
	"github.com/goliatone/go-hyperclient/pkg/browser"
	"github.com/goliatone/go-hyperclient/pkg/client"
	"github.com/goliatone/go-hyperclient/pkg/lookup"
	"github.com/goliatone/go-hyperclient/pkg/render"
	"github.com/goliatone/go-hyperclient/pkg/renderers/tui"
	"github.com/goliatone/go-hyperclient/pkg/renderers/vanilla"
	"github.com/goliatone/go-hyperclient/pkg/session"
)

func main() {
	configPath := flag.String("config", "", "configuration file (YAML)")
	entrypoint := flag.String("entrypoint", "", "user list URL of the exam archive API")
	renderer := flag.String("renderer", "", "renderer to use")
	logLevel := flag.String("log-level", "", "log level")
	username := flag.String("username", "", "log in as this user without prompting")
	remember := flag.Bool("remember", false, "persist the session between runs")
	flag.Parse()

	cfg, err := config.Load(*configPath, os.Getenv)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *entrypoint != "" {
		cfg.Entrypoint = *entrypoint
		cfg.Lookups = config.Lookups{}
	}
	if *renderer != "" {
		cfg.Renderer = *renderer
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Normalize(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	store := session.NewStore(session.NewFileStore(cfg.SessionFile), session.WithLogger(logger))
	c := client.New(store, client.WithLogger(logger))

	lists := lookup.NewSource(c)
	lists.RegisterDefaults(lookup.DefaultURLs{
		Teachers:  cfg.Lookups.Teachers,
		Languages: cfg.Lookups.Languages,
		UserTypes: cfg.Lookups.UserTypes,
		Archives:  cfg.Lookups.Archives,
	})

	driver := tui.DefaultDriver()
	presenter := cli.New(cli.WithPromptDriver(driver))

	registry := render.NewRegistry()
	registry.MustRegister(tui.New(tui.WithPromptDriver(driver)))
	html, err := vanilla.New()
	if err != nil {
		log.Fatalf("Failed to build the HTML renderer: %v", err)
	}
	registry.MustRegister(html)

	b, err := browser.New(
		browser.WithClient(c),
		browser.WithSessionStore(store),
		browser.WithView(presenter),
		browser.WithEntrypoint(cfg.Entrypoint),
		browser.WithLookup(lists),
		browser.WithUploader(client.NewMediaUploader(c)),
		browser.WithRegistry(registry),
		browser.WithDefaultRenderer(cfg.Renderer),
		browser.WithLogger(logger),
		browser.WithConfirm(func(ctx context.Context, prompt string) bool {
			ok, err := driver.Confirm(ctx, tui.ConfirmConfig{Message: prompt})
			return err == nil && ok
		}),
	)
	if err != nil {
		log.Fatalf("Failed to assemble browser: %v", err)
	}

	ctx := context.Background()
	if err := run(ctx, b, presenter, driver, *username, *remember); err != nil {
		log.Fatalf("%v", err)
	}
}

// run enters the client, via a remembered session when one exists, and keeps
// the interaction loop alive across re-logins after session expiry.
func run(ctx context.Context, b *browser.Browser, presenter *cli.Presenter, driver tui.PromptDriver, username string, remember bool) error {
	err := b.StartFromSession(ctx)
	if errors.Is(err, session.ErrNoSession) {
		err = login(ctx, b, driver, username, remember)
	}
	if errors.Is(err, tui.ErrAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	for {
		err := presenter.Run(ctx)
		if err == nil {
			return nil
		}
		if !client.IsAuth(err) {
			return err
		}
		if err := login(ctx, b, driver, username, remember); err != nil {
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			return err
		}
	}
}

func login(ctx context.Context, b *browser.Browser, driver tui.PromptDriver, username string, remember bool) error {
	for {
		name := username
		if name == "" {
			input, err := driver.Input(ctx, tui.InputConfig{Message: "User name"})
			if err != nil {
				return err
			}
			name = strings.TrimSpace(input)
		}
		password, err := driver.Password(ctx, tui.InputConfig{Message: "Password"})
		if err != nil {
			return err
		}

		err = b.Login(ctx, name, password, remember)
		if err == nil {
			return nil
		}
		if !client.IsAuth(err) {
			return fmt.Errorf("login: %w", err)
		}
		for _, msg := range b.Notifier().Drain() {
			if infoErr := driver.Info(ctx, msg.Text); infoErr != nil {
				return infoErr
			}
		}
		// A fixed -username that the server rejects would loop forever.
		username = ""
	}
}
