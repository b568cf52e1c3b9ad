package stub

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/vidmark/pkg/stub"
)

// Stub runs the local development server until the context ends.
type Stub struct {
	Addr       string
	Rate       float64
	ProbeDelay time.Duration
	MinBullets int
}

func (s *Stub) Do(ctx context.Context) error {
	store := stub.NewStore()
	if err := store.Open(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	srv := stub.New(stub.Config{
		Addr:       s.Addr,
		Rate:       s.Rate,
		ProbeDelay: s.ProbeDelay,
		MinBullets: s.MinBullets,
	}, store)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
