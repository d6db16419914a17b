package listener

import (
	"flag"

	"github.com/zachfi/zkit/pkg/util"
)

const defaultAddress = ":8000"

type Config struct {
	Address        string `yaml:"address,omitempty"`         // address the SOURCE listener binds to
	SourcePassword string `yaml:"source-password,omitempty"` // required basic auth password, empty accepts any source
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.Address, util.PrefixConfig(prefix, "address"), defaultAddress,
		"Address to accept broadcasts on. Point the DJ software's broadcast settings at this host and port.")
	f.StringVar(&cfg.SourcePassword, util.PrefixConfig(prefix, "source-password"), "",
		"Password sources must present. Empty accepts every source.")
}
