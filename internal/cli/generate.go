package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/artefom/apigen/internal/emitter/rustemitter"
	"github.com/artefom/apigen/internal/model"
)

// GenerateConfig captures all inputs that influence the generate command
// after merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	SpecDir    string
	Docs       string
	Out        string
	ModelOut   string
	ConfigPath string
	DryRun     bool
	Force      bool
	Verbose    bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Out: "api.rs"}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Compile a directory of OpenAPI documents into server source",
		Long: "Compile a directory of versioned OpenAPI 3 documents into a single " +
			"actix-web server source file. Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  apigen generate --spec-dir ./openapi --docs docs.html --out src/server/api.rs
  apigen --config apigen.yaml generate --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("spec-dir", "", "Directory containing the OpenAPI documents (one per major version)")
	flags.String("docs", "", "Path to the documentation HTML asset")
	flags.String("out", "", "Output path for the rendered server source; defaults to api.rs")
	flags.String("model-out", "", "Also write the serialized model to this path")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	cfg.Verbose = verbose

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("spec-dir") {
		value, err := flags.GetString("spec-dir")
		if err != nil {
			return err
		}
		cfg.SpecDir = strings.TrimSpace(value)
	}
	if flags.Changed("docs") {
		value, err := flags.GetString("docs")
		if err != nil {
			return err
		}
		cfg.Docs = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("model-out") {
		value, err := flags.GetString("model-out")
		if err != nil {
			return err
		}
		cfg.ModelOut = strings.TrimSpace(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	return nil
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw struct {
		SpecDir  string `yaml:"specDir"`
		Docs     string `yaml:"docs"`
		Out      string `yaml:"out"`
		ModelOut string `yaml:"modelOut"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	if raw.SpecDir != "" {
		cfg.SpecDir = raw.SpecDir
	}
	if raw.Docs != "" {
		cfg.Docs = raw.Docs
	}
	if raw.Out != "" {
		cfg.Out = raw.Out
	}
	if raw.ModelOut != "" {
		cfg.ModelOut = raw.ModelOut
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.SpecDir = strings.TrimSpace(c.SpecDir)
	c.Docs = strings.TrimSpace(c.Docs)
	c.Out = strings.TrimSpace(c.Out)
	c.ModelOut = strings.TrimSpace(c.ModelOut)
}

func (c *GenerateConfig) validate() error {
	if c.SpecDir == "" {
		return newUsageError("generate: --spec-dir is required (set via flag or config file)")
	}
	if c.Docs == "" {
		return newUsageError("generate: --docs is required (set via flag or config file)")
	}
	if c.Out == "" {
		return newUsageError("generate: --out must not be empty")
	}
	return nil
}

func runGenerate(cfg *GenerateConfig) error {
	docs, err := loadDocuments(cfg.SpecDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return newUsageError(fmt.Sprintf("generate: no OpenAPI documents found under %q", cfg.SpecDir))
	}

	mod, err := model.Merge(docs, cfg.Docs)
	if err != nil {
		return fmt.Errorf("compile model: %w", err)
	}

	res, err := rustemitter.Emit(mod, rustemitter.Options{
		OutFile:   cfg.Out,
		ModelFile: cfg.ModelOut,
		DryRun:    cfg.DryRun,
		Force:     cfg.Force,
	})
	if err != nil {
		return err
	}

	if cfg.DryRun || cfg.Verbose {
		fmt.Fprintf(os.Stdout, "Planned writes (%d files):\n", len(res.Planned))
		for _, p := range res.Planned {
			fmt.Fprintf(os.Stdout, "- %s (%d bytes)\n", p.Path, p.Size)
		}
	}
	return nil
}

// loadDocuments scans dir for OpenAPI documents, sorted by name for a
// stable merge order, and pairs each with its directory-relative path.
func loadDocuments(dir string) ([]model.Document, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".json":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", dir, err)
	}
	sort.Strings(paths)

	loader := openapi3.NewLoader()
	docs := make([]model.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		spec, err := loader.LoadFromData(data)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil, fmt.Errorf("relativize %q: %w", path, err)
		}
		docs = append(docs, model.Document{Spec: spec, SpecPath: filepath.ToSlash(rel)})
	}
	return docs, nil
}
