// Package rustemitter renders a compiled module into a single actix-web
// server source file. It consumes the model at its boundary contract:
// every reference in the module resolves to an emitted definition.
package rustemitter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/artefom/apigen/internal/model"
)

// Options controls how the emitter writes its outputs.
type Options struct {
	OutFile   string // required; path of the rendered server source
	ModelFile string // optional; serialized model.yaml written alongside
	DryRun    bool   // don't write, only plan
	Force     bool   // overwrite existing files
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	Path string
	Size int
}

// Result lists the planned files in deterministic order.
type Result struct {
	Planned []PlannedFile
}

// Emit renders the module and writes the planned files unless DryRun is
// set.
func Emit(mod *model.Module, opts Options) (*Result, error) {
	if mod == nil {
		return nil, fmt.Errorf("rustemitter: nil module")
	}
	if strings.TrimSpace(opts.OutFile) == "" {
		return nil, fmt.Errorf("rustemitter: OutFile is required")
	}

	source, err := Render(mod)
	if err != nil {
		return nil, err
	}

	files := map[string][]byte{opts.OutFile: []byte(source)}
	if opts.ModelFile != "" {
		serialized, err := mod.YAML()
		if err != nil {
			return nil, fmt.Errorf("serialize model: %w", err)
		}
		files[opts.ModelFile] = serialized
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	planned := make([]PlannedFile, 0, len(paths))
	for _, p := range paths {
		planned = append(planned, PlannedFile{Path: p, Size: len(files[p])})
	}

	if !opts.DryRun {
		if err := writeFiles(files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Planned: planned}, nil
}

func writeFiles(files map[string][]byte, force bool) error {
	for path, content := range files {
		if !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("rustemitter: %q already exists (use --force to overwrite)", path)
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := path + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", path, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", path, err)
		}
	}
	return nil
}
