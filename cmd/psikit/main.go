// Command psikit converts MPEG/DVB/SCTE signaling between its binary
// section form and XML. `psikit dump` reads transport streams or raw
// section files and prints XML; `psikit compile` turns XML back into
// sections or packets.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/psikit/scte35"
	"github.com/zsiec/psikit/si"
	"github.com/zsiec/psikit/ts"
)

var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := fs.String("c", "", "path to config.toml")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	files := fs.Args()
	if len(files) == 0 {
		usage()
		os.Exit(2)
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			slog.Error("bad config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}

	slog.Debug("psikit starting", "version", version, "command", cmd, "files", len(files))

	var err error
	switch cmd {
	case "dump":
		err = runDump(context.Background(), cfg, files)
	case "compile":
		err = runCompile(context.Background(), cfg, files)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: psikit <dump|compile> [-c config.toml] file...")
}

// runDump converts each input file to XML, processing files
// concurrently and printing results in argument order.
func runDump(ctx context.Context, cfg config, files []string) error {
	reg := newRegistry()
	outputs := make([][]byte, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := dumpFile(cfg, reg, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, out := range outputs {
		os.Stdout.Write(out)
	}
	return nil
}

func dumpFile(cfg config, reg *si.Registry, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sections []*si.Section
	if looksLikeTS(data) {
		slog.Debug("reading transport stream", "path", path, "pid", cfg.PID)
		sections, err = ts.ExtractSections(data, cfg.PID, sectionOptions(cfg, scte35.TableID)...)
		if err != nil {
			// The PID may carry standard-family tables instead.
			sections, err = ts.ExtractSections(data, cfg.PID)
		}
	} else {
		sections, err = splitSections(cfg, data)
	}
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("no sections found")
	}

	var out []byte
	for _, group := range groupSections(sections) {
		tbl, err := si.DecodeTable(reg, group)
		if err != nil {
			return nil, err
		}
		doc, err := si.TableToXML(tbl).Marshal()
		if err != nil {
			return nil, err
		}
		out = append(out, doc...)
		out = append(out, '\n')
	}
	slog.Debug("dumped", "path", path, "sections", len(sections))
	return out, nil
}

// splitSections walks a file of concatenated raw sections.
func splitSections(cfg config, data []byte) ([]*si.Section, error) {
	var sections []*si.Section
	for len(data) > 0 {
		if data[0] == 0xFF {
			break // trailing stuffing
		}
		if len(data) < si.ShortHeaderSize {
			return nil, fmt.Errorf("trailing %d bytes are not a section", len(data))
		}
		total := si.ShortHeaderSize + (int(data[1]&0x0F)<<8 | int(data[2]))
		if len(data) < total {
			return nil, fmt.Errorf("section truncated: need %d bytes, have %d", total, len(data))
		}
		sec, err := si.DecodeSection(data[:total], sectionOptions(cfg, data[0])...)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
		data = data[total:]
	}
	return sections, nil
}

func sectionOptions(cfg config, tableID uint8) []si.SectionOption {
	var opts []si.SectionOption
	if tableID == scte35.TableID || cfg.PrivateFamily {
		opts = append(opts, si.SectionPrivateFamily())
	}
	if tableID == scte35.TableID || cfg.ShortCRC {
		opts = append(opts, si.SectionWithCRC())
	}
	return opts
}

func looksLikeTS(data []byte) bool {
	return len(data) >= ts.PacketSize && len(data)%ts.PacketSize == 0 && data[0] == ts.SyncByte
}

// groupSections splits a section stream into per-table runs keyed by
// identity.
func groupSections(sections []*si.Section) [][]*si.Section {
	type key struct {
		tableID uint8
		ext     uint16
		version uint8
	}
	var order []key
	groups := make(map[key][]*si.Section)
	for _, s := range sections {
		k := key{s.TableID, s.TableIDExt, s.Version}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], s)
	}
	out := make([][]*si.Section, 0, len(order))
	for _, k := range order {
		out = append(out, groups[k])
	}
	return out
}

// runCompile builds binary output next to each XML input.
func runCompile(ctx context.Context, cfg config, files []string) error {
	reg := newRegistry()

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := compileFile(cfg, reg, path); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func compileFile(cfg config, reg *si.Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	root, err := si.ParseXML(data)
	if err != nil {
		return err
	}
	tbl, err := si.TableFromXML(reg, root)
	if err != nil {
		return err
	}
	sections, err := si.PackTable(tbl)
	if err != nil {
		return err
	}

	var out []byte
	switch cfg.Format {
	case "ts":
		if out, err = ts.NewPacketizer(cfg.PID).Packetize(sections...); err != nil {
			return err
		}
	default:
		for _, s := range sections {
			enc, err := s.Encode()
			if err != nil {
				return err
			}
			out = append(out, enc...)
		}
	}

	dest := strings.TrimSuffix(path, ".xml") + "." + cfg.Format
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return err
	}
	slog.Info("compiled", "input", path, "output", dest, "sections", len(sections))
	return nil
}
