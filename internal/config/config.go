// Package config resolves the analyzed source roots and the optional server
// configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/morphohq/morpho/internal/model"
)

// RootsEnv names the colon-separated list of root directories consulted when
// no explicit root arguments are given.
const RootsEnv = "MORPHO_ROOTS"

// DefaultAddr is the agent's default listen address.
const DefaultAddr = "127.0.0.1:8080"

// ResolveRoots builds the rank-ordered root list: explicit arguments win,
// then MORPHO_ROOTS, then the current directory. The first root is primary.
// A root's name is the base name of its absolute path; the name keys the
// federated model, so two roots with the same name are an error.
func ResolveRoots(args []string) ([]model.SourceRoot, error) {
	paths := args
	if len(paths) == 0 {
		for _, p := range strings.Split(os.Getenv(RootsEnv), ":") {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	if len(paths) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		paths = []string{cwd}
	}

	roots := make([]model.SourceRoot, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving root %s: %w", p, err)
		}
		name := filepath.Base(abs)
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate root name %q: %s and %s", name, prev, abs)
		}
		seen[name] = abs
		roots = append(roots, model.SourceRoot{
			Name: name,
			Path: abs,
			Rank: i,
		})
	}
	return roots, nil
}

// Server holds the optional serve/mcp settings. Roots never come from the
// config file; they follow ResolveRoots.
type Server struct {
	Addr      string   `yaml:"addr"`
	Blacklist []string `yaml:"blacklist"`
}

// LoadServer reads a YAML server config. A missing file (or empty path)
// yields defaults; a malformed one is an error.
func LoadServer(path string) (Server, error) {
	cfg := Server{Addr: DefaultAddr}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Server{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Server{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return cfg, nil
}
