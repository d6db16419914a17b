package session

import (
	"flag"

	"github.com/zachfi/zkit/pkg/util"

	"github.com/zachfi/nowplaying/pkg/render"
)

type Config struct {
	Quiet        bool   `yaml:"quiet,omitempty"`         // disable console output
	OutputFile   string `yaml:"output-file,omitempty"`   // path of the now playing file, empty to disable
	Append       bool   `yaml:"append,omitempty"`        // keep previous tracks in the output file
	MaxTracks    int    `yaml:"max-tracks,omitempty"`    // number of tracks kept when appending, <= 0 for unbounded
	OutputFormat string `yaml:"output-format,omitempty"` // per-track template
	FileTemplate string `yaml:"file-template,omitempty"` // path of a whole-file template rendered from the track history
	HTML         bool   `yaml:"html,omitempty"`          // render the output file with the built in HTML page
	LineEnding   string `yaml:"line-ending,omitempty"`   // "lf", "crlf" or empty for the platform default
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.BoolVar(&cfg.Quiet, util.PrefixConfig(prefix, "quiet"), false, "Suppress console output of the currently playing track.")
	f.StringVar(&cfg.OutputFile, util.PrefixConfig(prefix, "output-file"), "", "File to write the currently playing track to.")
	f.BoolVar(&cfg.Append, util.PrefixConfig(prefix, "append"), false,
		"Keep previous tracks in the output file. Combine with max-tracks to bound the file to the most recent tracks.")
	f.IntVar(&cfg.MaxTracks, util.PrefixConfig(prefix, "max-tracks"), -1, "Number of tracks kept in the output file when appending. Zero or less appends without limit.")
	f.StringVar(&cfg.OutputFormat, util.PrefixConfig(prefix, "output-format"), render.Default, "Template for one track in the output file.")
	f.StringVar(&cfg.FileTemplate, util.PrefixConfig(prefix, "file-template"), "", "Template file rendering the whole output file from the track history, e.g. an HTML page.")
	f.BoolVar(&cfg.HTML, util.PrefixConfig(prefix, "html"), false, "Write the output file as the built in HTML page listing the track history. Ignored when file-template is set.")
	f.StringVar(&cfg.LineEnding, util.PrefixConfig(prefix, "line-ending"), "", "Line ending between tracks in the output file: lf or crlf. Defaults to the platform convention.")
}
