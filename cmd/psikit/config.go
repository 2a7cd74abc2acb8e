package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/zsiec/psikit/dvb"
	"github.com/zsiec/psikit/scte35"
	"github.com/zsiec/psikit/si"
)

// config controls how psikit reads and writes streams.
type config struct {
	// PID carries the sections when reading or writing transport
	// stream packets.
	PID uint16

	// Format selects compile output: "bin" for concatenated raw
	// sections, "ts" for transport stream packets.
	Format string

	// PrivateFamily forces 4096-byte family decoding for raw section
	// input. SCTE-35 sections are recognized by table id regardless.
	PrivateFamily bool

	// ShortCRC treats short-syntax sections as CRC protected.
	ShortCRC bool
}

// psikit config.toml key mapping.
type fileConfig struct {
	PID           int    `toml:"pid"`
	Format        string `toml:"format"`
	PrivateFamily bool   `toml:"private_family"`
	ShortCRC      bool   `toml:"short_crc"`
}

func defaultConfig() config {
	return config{
		PID:    0x0030,
		Format: "bin",
	}
}

// loadConfig overlays config.toml values onto the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("pid") {
		if raw.PID < 0 || raw.PID > 0x1FFF {
			return config{}, fmt.Errorf("load config: pid %d out of range", raw.PID)
		}
		cfg.PID = uint16(raw.PID)
	}
	if meta.IsDefined("format") {
		if raw.Format != "bin" && raw.Format != "ts" {
			return config{}, fmt.Errorf("load config: unknown format %q", raw.Format)
		}
		cfg.Format = raw.Format
	}
	if meta.IsDefined("private_family") {
		cfg.PrivateFamily = raw.PrivateFamily
	}
	if meta.IsDefined("short_crc") {
		cfg.ShortCRC = raw.ShortCRC
	}
	return cfg, nil
}

// newRegistry combines every table and descriptor family the tool
// understands.
func newRegistry() *si.Registry {
	return si.NewRegistry(
		si.WithDescriptors(append(dvb.Descriptors(), scte35.Descriptors()...)...),
		si.WithTables(append(dvb.Tables(), scte35.Tables()...)...),
	)
}
