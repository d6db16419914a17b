package app

import (
	"flag"

	"github.com/grafana/dskit/flagext"
	"github.com/grafana/dskit/server"

	"github.com/zachfi/zkit/pkg/tracing"

	"github.com/zachfi/nowplaying/modules/api"
	"github.com/zachfi/nowplaying/modules/listener"
	"github.com/zachfi/nowplaying/modules/remote"
	"github.com/zachfi/nowplaying/modules/session"
)

type Config struct {
	Target   string          `yaml:"target"`
	Tracing  tracing.Config  `yaml:"tracing,omitempty"`
	Server   server.Config   `yaml:"server,omitempty"`
	Session  session.Config  `yaml:"session,omitempty"`
	Listener listener.Config `yaml:"listener,omitempty"`
	Remote   remote.Config   `yaml:"remote,omitempty"`
	API      api.Config      `yaml:"api,omitempty"`
}

func (c *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&c.Target, "target", All, "Comma separated list of modules to run: all, listener, remote, api.")

	flagext.DefaultValues(&c.Server)
	f.IntVar(&c.Server.HTTPListenPort, "server.http-listen-port", 3030, "HTTP server listen port.")
	f.IntVar(&c.Server.GRPCListenPort, "server.grpc-listen-port", 9090, "gRPC server listen port.")

	c.Tracing.RegisterFlagsAndApplyDefaults("tracing", f)
	c.Session.RegisterFlagsAndApplyDefaults("session", f)
	c.Listener.RegisterFlagsAndApplyDefaults("listener", f)
	c.Remote.RegisterFlagsAndApplyDefaults("remote", f)
	c.API.RegisterFlagsAndApplyDefaults("api", f)
}
