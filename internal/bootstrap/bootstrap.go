// Package bootstrap reads the optional startup file named by CONFIG_PATH.
//
// The file is a JSON object with two optional top-level keys:
//
//	{"connection_info": {...}, "manifest": {...}}
//
// A missing file is treated the same as an unset path. Any other failure is
// returned to the caller, which logs it and keeps empty defaults.
package bootstrap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/enginemock/enginemock/internal/catalog"
	"github.com/enginemock/enginemock/internal/observability"
)

type File struct {
	ConnectionInfo catalog.Document `json:"connection_info"`
	Manifest       catalog.Document `json:"manifest"`
}

func Load(path string) (File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return File{}, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return File{}, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read bootstrap file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (File, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return File{}, errors.New("bootstrap file must contain a JSON object")
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var file File
	if err := decoder.Decode(&file); err != nil {
		return File{}, fmt.Errorf("decode bootstrap file: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return File{}, errors.New("decode bootstrap file: unexpected data after JSON object")
	}
	return file, nil
}

// LoadOrWarn never fails: problems are logged and an empty File is returned.
func LoadOrWarn(logger *slog.Logger, path string) File {
	file, err := Load(path)
	if err != nil {
		observability.IncrementBootstrapFailure()
		if logger != nil {
			logger.Warn("could not load config", slog.String("config_path", path), slog.Any("error", err))
		}
		return File{}
	}
	if logger != nil && strings.TrimSpace(path) != "" {
		logger.Debug("bootstrap config loaded",
			slog.String("config_path", path),
			slog.Int("manifest_keys", len(file.Manifest)),
			slog.Int("connection_info_keys", len(file.ConnectionInfo)),
		)
	}
	return file
}
