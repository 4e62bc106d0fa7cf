// Command bencat decodes, encodes, and inspects bencoded data from the
// command line: torrent files, magnet links, and raw bencode streams.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sort"

	"github.com/prxssh/bencode/internal/config"
	"github.com/prxssh/bencode/internal/logging"
	"github.com/prxssh/bencode/pkg/bencode"
	"github.com/prxssh/bencode/pkg/metainfo"
	"github.com/prxssh/bencode/pkg/tracker"
)

func main() {
	setupLogger()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "decode":
		err = runDecode(os.Args[2:])
	case "encode":
		err = runEncode(os.Args[2:])
	case "infohash":
		err = runInfoHash(os.Args[2:])
	case "magnet":
		err = runMagnet(os.Args[2:])
	case "announce":
		err = runAnnounce(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("bencat", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bencat <decode|encode|infohash|magnet|announce> [flags]")
}

func setupLogger() {
	opts := logging.DefaultOptions()
	opts.SlogOpts.Level = slog.LevelInfo

	slog.SetDefault(logging.New(os.Stderr, &opts))
}

func runDecode(args []string) error {
	cfg, err := config.Default()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	sloppy := fs.Bool("sloppy", cfg.Sloppy, "allow trailing bytes after the decoded value")
	maxDepth := fs.Int("max-depth", cfg.MaxDepth, "maximum nested list/dict depth")
	file := fs.String("file", "", "input file (default: stdin)")
	fs.Parse(args)

	data, err := readInput(*file)
	if err != nil {
		return err
	}

	opts := []bencode.DecodeOption{bencode.WithMaxDepth(*maxDepth)}
	if *sloppy {
		opts = append(opts, bencode.WithSloppy())
	}

	v, n, err := bencode.Decode(data, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", formatValue(v))
	if *sloppy && n != len(data) {
		fmt.Fprintf(os.Stderr, "consumed %d of %d bytes\n", n, len(data))
	}
	return nil
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	file := fs.String("file", "", "input JSON file (default: stdin)")
	fs.Parse(args)

	data, err := readInput(*file)
	if err != nil {
		return err
	}

	var native any
	if err := json.Unmarshal(data, &native); err != nil {
		return fmt.Errorf("bencat: invalid JSON input: %w", err)
	}

	out, err := bencode.Marshal(native)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(out)
	return err
}

func runInfoHash(args []string) error {
	fs := flag.NewFlagSet("infohash", flag.ExitOnError)
	file := fs.String("file", "", ".torrent file (default: stdin)")
	fs.Parse(args)

	data, err := readInput(*file)
	if err != nil {
		return err
	}

	m, err := metainfo.ParseMetainfo(data)
	if err != nil {
		return err
	}

	fmt.Println(hex.EncodeToString(m.Info.Hash[:]))
	return nil
}

func runMagnet(args []string) error {
	fs := flag.NewFlagSet("magnet", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("bencat: magnet requires exactly one URI argument")
	}

	m, err := metainfo.ParseMagnet(fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("info-hash: %s\n", hex.EncodeToString(m.InfoHash[:]))
	if m.Name != "" {
		fmt.Printf("name:      %s\n", m.Name)
	}
	for _, tr := range m.Trackers {
		fmt.Printf("tracker:   %s\n", tr)
	}
	return nil
}

func runAnnounce(args []string) error {
	fs := flag.NewFlagSet("announce", flag.ExitOnError)
	file := fs.String("file", "", ".torrent file (default: stdin)")
	fs.Parse(args)

	data, err := readInput(*file)
	if err != nil {
		return err
	}

	m, err := metainfo.ParseMetainfo(data)
	if err != nil {
		return err
	}

	cfg, err := config.Default()
	if err != nil {
		return err
	}

	announceURL, err := url.Parse(m.Announce)
	if err != nil {
		return fmt.Errorf("bencat: invalid announce url: %w", err)
	}

	t, err := tracker.NewHTTPTracker(
		announceURL, slog.Default(),
		cfg.MaxAnnounceAttempts, cfg.AnnounceBackoffInitial, cfg.AnnounceBackoffMax,
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	resp, err := t.Announce(ctx, &tracker.AnnounceParams{
		InfoHash: m.Info.Hash,
		PeerID:   cfg.PeerID,
		Left:     uint64(m.Size()),
		Event:    tracker.EventStarted,
		NumWant:  cfg.NumWant,
		Port:     cfg.Port,
	})
	if err != nil {
		return err
	}

	fmt.Printf("seeders=%d leechers=%d interval=%s peers=%d\n",
		resp.Seeders, resp.Leechers, resp.Interval, len(resp.Peers))
	for _, p := range resp.Peers {
		fmt.Println(p)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func formatValue(v bencode.Value) string {
	switch v.Kind() {
	case bencode.KindInteger:
		i, _ := v.Int()
		return i.String()
	case bencode.KindBytes:
		b, _ := v.Bytes()
		if isPrintable(b) {
			return fmt.Sprintf("%q", string(b))
		}
		return hex.EncodeToString(b)
	case bencode.KindList:
		items, _ := v.List()
		s := "["
		for i, it := range items {
			if i > 0 {
				s += ", "
			}
			s += formatValue(it)
		}
		return s + "]"
	case bencode.KindDict:
		d, _ := v.Dict()
		s := "{"
		first := true
		for _, k := range sortedKeysForDisplay(d) {
			if !first {
				s += ", "
			}
			first = false
			s += fmt.Sprintf("%q: %s", k, formatValue(d[k]))
		}
		return s + "}"
	case bencode.KindPrecomputed:
		return "<precomputed>"
	default:
		return "<unknown>"
	}
}

func sortedKeysForDisplay(d map[string]bencode.Value) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
