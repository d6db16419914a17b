// Command fakesource broadcasts a synthetic Ogg Vorbis stream to a SOURCE
// listener, announcing a new track every interval. It stands in for DJ
// software when testing a nowplaying setup.
package main

import (
	"bufio"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"os"
	"strings"
	"time"

	"github.com/grafana/dskit/flagext"

	"github.com/zachfi/nowplaying/pkg/ogg"
	"github.com/zachfi/nowplaying/pkg/vorbis"
)

type config struct {
	Address  string
	Mount    string
	Password string
	Tracks   flagext.StringSliceCSV
	Interval time.Duration
	Loop     bool
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config{Tracks: flagext.StringSliceCSV{"Test Artist - Test Title"}}
	flag.StringVar(&cfg.Address, "address", "127.0.0.1:8000", "Address of the SOURCE listener.")
	flag.StringVar(&cfg.Mount, "mount", "/live", "Mount point to broadcast to.")
	flag.StringVar(&cfg.Password, "password", "", "Source password, if the listener requires one.")
	flag.Var(&cfg.Tracks, "tracks", "Comma separated list of \"Artist - Title\" tracks to announce.")
	flag.DurationVar(&cfg.Interval, "interval", 5*time.Second, "Time between track changes.")
	flag.BoolVar(&cfg.Loop, "loop", false, "Start over after the last track.")
	flag.Parse()

	if err := run(cfg, logger); err != nil {
		logger.Error("broadcast failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config, logger *slog.Logger) error {
	conn, err := net.Dial("tcp", cfg.Address)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := handshake(conn, cfg); err != nil {
		return err
	}
	logger.Info("connected", "address", cfg.Address, "mount", cfg.Mount)

	first := true
	for {
		for _, t := range cfg.Tracks {
			if !first {
				time.Sleep(cfg.Interval)
			}
			first = false

			artist, title, _ := strings.Cut(t, " - ")
			if err := sendTrack(conn, artist, title); err != nil {
				return err
			}
			logger.Info("announced", "artist", artist, "title", title)
		}

		if !cfg.Loop {
			return nil
		}
	}
}

func handshake(conn net.Conn, cfg config) error {
	var b strings.Builder
	fmt.Fprintf(&b, "SOURCE %s HTTP/1.0\r\n", cfg.Mount)
	b.WriteString("Content-Type: application/ogg\r\n")
	b.WriteString("User-Agent: fakesource\r\n")
	if cfg.Password != "" {
		fmt.Fprintf(&b, "Authorization: Basic %s\r\n", base64.StdEncoding.EncodeToString([]byte("source:"+cfg.Password)))
	}
	b.WriteString("\r\n")

	if _, err := conn.Write([]byte(b.String())); err != nil {
		return err
	}

	status, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return err
	}
	if !strings.Contains(status, " 200 ") {
		return fmt.Errorf("listener refused the source: %s", strings.TrimSpace(status))
	}
	return nil
}

// sendTrack starts a new chained bitstream announcing artist and title, the
// way an encoder does on a track change.
func sendTrack(out io.Writer, artist, title string) error {
	w := ogg.NewWriter(out, rand.Uint32())

	comment := vorbis.Comment{Vendor: "fakesource"}
	if artist != "" {
		comment.Entries = append(comment.Entries, "ARTIST="+artist)
	}
	comment.Entries = append(comment.Entries, "TITLE="+title)

	packets := [][]byte{
		[]byte("\x01vorbis"),
		comment.Encode(),
		[]byte("\x05vorbis"),
	}
	for _, pkt := range packets {
		if err := w.WritePacket(pkt, 0, false); err != nil {
			return err
		}
	}
	return nil
}
