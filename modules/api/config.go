package api

import (
	"flag"

	"github.com/zachfi/zkit/pkg/util"
)

type Config struct {
	PathPrefix   string `yaml:"path-prefix,omitempty"`
	ClientBuffer int    `yaml:"client-buffer,omitempty"` // updates queued per websocket client before it is dropped
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.PathPrefix, util.PrefixConfig(prefix, "path-prefix"), "/api", "Path prefix of the now playing HTTP API.")
	f.IntVar(&cfg.ClientBuffer, util.PrefixConfig(prefix, "client-buffer"), 16, "Updates queued per websocket client before the client is dropped.")
}
