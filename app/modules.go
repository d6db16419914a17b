package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/grafana/dskit/modules"
	"github.com/grafana/dskit/server"
	"github.com/grafana/dskit/services"
	"github.com/pkg/errors"

	"github.com/zachfi/nowplaying/modules/api"
	"github.com/zachfi/nowplaying/modules/listener"
	"github.com/zachfi/nowplaying/modules/remote"
	"github.com/zachfi/nowplaying/modules/session"
)

const (
	Server  string = "server"
	Session string = "session"

	Listener string = "listener"
	Remote   string = "remote"
	API      string = "api"

	All string = "all"
)

func (a *App) setupModuleManager() error {
	mm := modules.NewManager(kitlog.NewLogfmtLogger(os.Stderr))
	mm.RegisterModule(Server, a.initServer, modules.UserInvisibleModule)
	mm.RegisterModule(Session, a.initSession, modules.UserInvisibleModule)

	mm.RegisterModule(Listener, a.initListener)
	mm.RegisterModule(Remote, a.initRemote)
	mm.RegisterModule(API, a.initAPI)

	mm.RegisterModule(All, nil)

	deps := map[string][]string{
		// Server:  nil,
		// Session: nil,
		Listener: {Session},
		Remote:   {Session},
		API:      {Server, Session},

		All: {Listener, API},
	}

	for mod, targets := range deps {
		if err := mm.AddDependency(mod, targets...); err != nil {
			return err
		}
	}

	a.ModuleManager = mm

	return nil
}

func (a *App) initSession() (services.Service, error) {
	s, err := session.New(a.cfg.Session, a.logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to init "+Session)
	}

	a.session = s
	return s, nil
}

func (a *App) initListener() (services.Service, error) {
	l, err := listener.New(a.cfg.Listener, a.session.Pipeline, a.logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to init "+Listener)
	}

	return l, nil
}

func (a *App) initRemote() (services.Service, error) {
	r, err := remote.New(a.cfg.Remote, a.session.Pipeline, a.logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to init "+Remote)
	}

	return r, nil
}

func (a *App) initAPI() (services.Service, error) {
	s, err := api.New(a.cfg.API, a.session.Pipeline, a.Server.HTTP, a.logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to init "+API)
	}

	return s, nil
}

func (a *App) initServer() (services.Service, error) {
	a.cfg.Server.MetricsNamespace = metricsNamespace
	a.cfg.Server.ExcludeRequestInLog = true
	a.cfg.Server.RegisterInstrumentation = true
	a.cfg.Server.Log = kitlog.NewLogfmtLogger(os.Stderr)

	server, err := server.New(a.cfg.Server)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create server")
	}

	servicesToWaitFor := func() []services.Service {
		svs := []services.Service(nil)
		for m, s := range a.serviceMap {
			// Server should not wait for itself.
			if m != Server {
				svs = append(svs, s)
			}
		}

		return svs
	}

	a.Server = server

	serverDone := make(chan error, 1)

	runFn := func(ctx context.Context) error {
		go func() {
			defer close(serverDone)
			serverDone <- server.Run()
		}()

		select {
		case <-ctx.Done():
			return nil
		case err := <-serverDone:
			if err != nil {
				return err
			}

			return fmt.Errorf("server stopped unexpectedly")
		}
	}

	stoppingFn := func(_ error) error {
		// wait until all modules are done, and then shutdown server.
		for _, s := range servicesToWaitFor() {
			_ = s.AwaitTerminated(context.Background())
		}

		// shutdown HTTP and gRPC servers (this also unblocks Run)
		server.Shutdown()

		// if not closed yet, wait until server stops.
		<-serverDone
		slog.Info("server stopped")
		return nil
	}

	return services.NewBasicService(nil, runFn, stoppingFn), nil
}
