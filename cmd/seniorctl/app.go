package main

import (
	"context"
	"io"

	"github.com/jrsteele09/seniorinteract/auth"
	"github.com/jrsteele09/seniorinteract/internal/config"
	"github.com/jrsteele09/seniorinteract/sessions"
	"github.com/jrsteele09/seniorinteract/storage"
	"github.com/jrsteele09/seniorinteract/token"
	"github.com/jrsteele09/seniorinteract/users"
	"github.com/rs/zerolog/log"
)

// app is the wired stack behind every command
type app struct {
	config  config.Config
	backend storage.Backend
	closer  io.Closer
	store   *sessions.Store
	service *auth.Service
}

func newApp(ctx context.Context, c config.Config) (*app, error) {
	backend, closer, err := storage.New(ctx, c)
	if err != nil {
		return nil, err
	}

	a := &app{config: c, backend: backend, closer: closer}
	if err := a.initialise(ctx); err != nil {
		_ = closer.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) initialise(ctx context.Context) error {
	store, err := sessions.NewStore(a.backend, a.config)
	if err != nil {
		return err
	}
	a.store = store

	provider, err := a.newProvider(ctx)
	if err != nil {
		return err
	}

	a.service, err = auth.NewService(provider, store,
		auth.WithValidator(auth.NewValidator(a.config)),
		auth.WithLocalMode(a.config.GetLocalMode()),
	)
	return err
}

func (a *app) newProvider(ctx context.Context) (auth.Provider, error) {
	if !a.config.GetLocalMode() {
		log.Debug().Str("url", a.config.GetSupabaseURL()).Msg("Using Supabase auth provider")
		return auth.NewRemoteProvider(ctx, a.config)
	}

	log.Debug().Msg("Local mode: using on-device account directory")
	tokens, err := token.NewFromConfig(a.config)
	if err != nil {
		return nil, err
	}

	repo := users.NewBackendRepo(a.backend, a.config.GetLocalUsersKey())
	if a.config.GetSeedDemoUser() {
		if err := users.SeedDemoUser(ctx, repo); err != nil {
			log.Warn().Err(err).Msg("Failed to seed demo user")
		}
	}
	return auth.NewLocalProvider(repo, tokens)
}

func (a *app) Close() error {
	return a.closer.Close()
}
