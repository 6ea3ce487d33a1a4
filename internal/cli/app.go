package cli

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/session"
	"fintrack/internal/store"
)

// Blobs is the snapshot storage the app persists to.
type Blobs interface {
	store.BlobStore
	Close() error
}

// App is one wired process: gateway, snapshot, session and store, plus the
// optional change forwarder.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Session *session.Binding
	Store   *store.Store

	closers   []func() error
	forwarder *notify.Forwarder
	unbind    func()
}

// NewApp builds the app from configuration. blobs may be nil to run without
// a local snapshot.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger, blobs Blobs) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}
	if res.Cleanup != nil {
		app.closers = append(app.closers, res.Cleanup)
	}

	var secret []byte
	if cfg.SessionJWTSecret != "" {
		secret = []byte(cfg.SessionJWTSecret)
	}
	app.Session = session.New(secret, logger)

	opts := store.Options{
		Gateway:    res.Backend,
		Identity:   app.Session,
		Logger:     logger,
		StorageKey: cfg.SnapshotKey,
	}
	if blobs != nil {
		opts.Blobs = blobs
		app.closers = append(app.closers, blobs.Close)
	}
	app.Store = store.New(opts)

	if err := app.Store.Hydrate(ctx); err != nil {
		logger.WarnContext(ctx, "Snapshot unreadable, starting empty", log.FieldOperation, log.OpHydrate, log.FieldError, err)
	}
	app.unbind = app.Store.BindSession(app.Session)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		} else {
			app.closers = append(app.closers, client.Close)
			app.forwarder = notify.NewForwarder(client, app.Store, logger, 0)
			app.forwarder.Start(ctx)
			logger.InfoContext(ctx, "Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}
	return app, nil
}

// SignIn signs in userID, or verifies token when userID is empty, and loads
// that user's data.
func (a *App) SignIn(ctx context.Context, userID, token string) error {
	if userID == "" && token == "" {
		userID = a.Config.DefaultUser
	}
	if token != "" {
		_, err := a.Session.SignInWithToken(ctx, token)
		return err
	}
	if userID == "" {
		return fmt.Errorf("no user: set FINTRACK_USER or pass -user/-token")
	}
	return a.Session.SignIn(ctx, userID)
}

// Close waits for pending gateway writes, flushes change events and
// releases every resource in reverse order of acquisition.
func (a *App) Close() error {
	if a.unbind != nil {
		a.unbind()
	}
	var errs []error
	if err := a.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.forwarder != nil {
		a.forwarder.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
