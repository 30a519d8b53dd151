package main

import (
	"os"
	"path/filepath"

	"github.com/go-faster/yaml"

	"github.com/go-faster/otelbuf/internal/colbuf"
	"github.com/go-faster/otelbuf/internal/ingest"
)

// Config is the otelbuf config.
type Config struct {
	// OnError selects the malformed-input policy: fail, skip or nullify.
	OnError string `json:"on_error" yaml:"on_error"`
	// MaxDocumentBytes bounds one document or line; larger input is a hard
	// error regardless of policy.
	MaxDocumentBytes int64 `json:"max_document_bytes" yaml:"max_document_bytes"`

	// TargetRows sizes the per-table buffers when MaxChunks is unset.
	TargetRows int `json:"target_rows" yaml:"target_rows"`
	// ChunkRows is the sealed chunk size.
	ChunkRows int `json:"chunk_rows" yaml:"chunk_rows"`
	// MaxChunks caps sealed chunks per table; zero derives it from TargetRows.
	MaxChunks int `json:"max_chunks" yaml:"max_chunks"`

	// Workers bounds concurrent file ingestion.
	Workers int `json:"workers" yaml:"workers"`
}

func (cfg *Config) setDefaults() {
	if cfg.OnError == "" {
		cfg.OnError = ingest.OnErrorFail.String()
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = ingest.DefaultMaxDocumentBytes
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
}

func (cfg Config) bufferOptions() colbuf.Options {
	return colbuf.Options{
		TargetRows: cfg.TargetRows,
		ChunkRows:  cfg.ChunkRows,
		MaxChunks:  cfg.MaxChunks,
	}
}

func loadConfig(name string) (cfg Config, _ error) {
	if name == "" {
		name = "otelbuf.yml"
		if _, err := os.Stat(name); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(filepath.Clean(name))
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
