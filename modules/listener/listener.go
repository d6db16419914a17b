package listener

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/grafana/dskit/services"

	"github.com/zachfi/nowplaying/pkg/pipeline"
)

var module = "listener"

// Listener accepts SOURCE uploads from DJ software and feeds each one into
// the session on its own goroutine.
type Listener struct {
	services.Service
	cfg     *Config
	logger  *slog.Logger
	session *pipeline.Session

	ln net.Listener

	mtx   sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup // one per connection handler
}

// New creates and returns a new Listener.
func New(cfg Config, session *pipeline.Session, logger slog.Logger) (*Listener, error) {
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}

	l := &Listener{
		cfg:     &cfg,
		logger:  logger.With("module", module),
		session: session,
		conns:   make(map[net.Conn]struct{}),
	}

	l.Service = services.NewBasicService(l.starting, l.running, l.stopping)

	return l, nil
}

// Addr returns the bound address once the service is running.
func (l *Listener) Addr() net.Addr {
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

func (l *Listener) starting(_ context.Context) error {
	ln, err := net.Listen("tcp", l.cfg.Address)
	if err != nil {
		l.logger.Error("error opening listener", "address", l.cfg.Address, "err", err)
		return err
	}
	l.ln = ln

	l.logger.Info("listening for sources", "address", ln.Addr().String())
	return nil
}

func (l *Listener) running(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.logger.Error("error accepting connection", "err", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		l.add(conn)
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			defer l.remove(conn)
			l.handle(ctx, conn)
		}()
	}
}

func (l *Listener) stopping(_ error) error {
	l.logger.Info("stopping")

	// Unblock readers; handlers stop at the packet they are reading and no
	// partial packet reaches the sinks.
	l.mtx.Lock()
	for conn := range l.conns {
		_ = conn.SetReadDeadline(time.Now())
	}
	l.mtx.Unlock()

	l.wg.Wait()
	return nil
}

func (l *Listener) add(conn net.Conn) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.conns[conn] = struct{}{}
	metricConnectionsActive.Inc()
}

func (l *Listener) remove(conn net.Conn) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	delete(l.conns, conn)
	metricConnectionsActive.Dec()
}
