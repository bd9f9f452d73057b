package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/julianstephens/finlit/internal/config"
	"github.com/julianstephens/finlit/internal/keyring"
	"github.com/julianstephens/finlit/internal/models"
)

type builder struct {
	ctx      context.Context
	cfg      config.NotifyConfig
	out      io.Writer
	provided map[string]Sink
	built    map[string]Sink
	closers  []func() error
}

// Build assembles a Router from configuration. Only referenced sinks are
// constructed, so an unused broker is never dialed. Sinks owned by the
// caller, such as the watch view, come in through provided. The returned
// function releases broker connections.
func Build(ctx context.Context, cfg config.NotifyConfig, out io.Writer, provided map[string]Sink) (*Router, func() error, error) {
	b := &builder{ctx: ctx, cfg: cfg, out: out, provided: provided, built: map[string]Sink{}}

	fallback, err := b.resolve(cfg.Default)
	if err != nil {
		b.close()
		return nil, nil, err
	}
	router := NewRouter(fallback...)
	for channel, names := range cfg.Channels {
		sinks, err := b.resolve(names)
		if err != nil {
			b.close()
			return nil, nil, err
		}
		router.Route(models.Channel(channel), sinks...)
	}
	return router, b.close, nil
}

func (b *builder) close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (b *builder) resolve(names []string) ([]Named, error) {
	var sinks []Named
	for _, name := range names {
		sink, ok := b.built[name]
		if !ok {
			var err error
			if sink, err = b.newSink(name); err != nil {
				return nil, fmt.Errorf("notification sink %q: %w", name, err)
			}
			b.built[name] = sink
		}
		sinks = append(sinks, Named{Name: name, Sink: sink})
	}
	return sinks, nil
}

func (b *builder) newSink(name string) (Sink, error) {
	if sink, ok := b.provided[name]; ok {
		return sink, nil
	}

	switch name {
	case config.SinkLog:
		return NewLogSink(b.out), nil

	case config.SinkTray:
		return NewTraySink(b.cfg.Tray.LockfileDir), nil

	case config.SinkRedis:
		if b.cfg.Redis.Addr == "" {
			return nil, errors.New("notify.redis.addr is not set")
		}
		client, err := DialRedis(b.ctx, b.cfg.Redis.Addr, keyring.Lookup(keyring.SecretRedis, ""), b.cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Close)
		return NewRedisSink(client, b.cfg.Redis.Channel), nil

	case config.SinkAMQP:
		url := b.cfg.AMQP.URL
		if url == "" {
			url = keyring.Lookup(keyring.SecretAMQPURL, "")
		}
		if url == "" {
			return nil, errors.New("notify.amqp.url is not set and no amqp-url is stored in the keyring")
		}
		sink, err := DialAMQP(url, b.cfg.AMQP.Exchange, b.cfg.AMQP.RoutingKey)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, sink.Close)
		return sink, nil

	case config.SinkTUI:
		return nil, errors.New("only available while the watch view is running")
	}
	return nil, errors.New("unknown sink")
}
