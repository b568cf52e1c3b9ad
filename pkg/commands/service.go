package commands

import (
	"context"

	"tableflip.dev/vidmark/pkg/api"
	"tableflip.dev/vidmark/pkg/app"
	"tableflip.dev/vidmark/pkg/config"
	"tableflip.dev/vidmark/pkg/store"
)

// newService loads config and wires the store and API client into the
// service facade every command runs against.
func newService() (*app.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	p, err := store.Open(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	client := api.NewClient(api.Config{
		BaseURL: cfg.API.URL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	})
	return app.New(p, client, cfg.Editor.Options()), nil
}

// videoCompletions offers pulled video ids for shell completion.
func videoCompletions(toComplete string) []string {
	svc, err := newService()
	if err != nil {
		return nil
	}
	defer func() { _ = svc.Persistence.Close() }()

	sessions, err := svc.Sessions(context.Background())
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		if toComplete == "" || len(s.VideoID) >= len(toComplete) && s.VideoID[:len(toComplete)] == toComplete {
			ids = append(ids, s.VideoID)
		}
	}
	return ids
}
