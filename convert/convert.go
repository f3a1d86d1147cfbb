// Package convert is the embedding surface of the loop converter: it
// loads configuration, builds engines, and walks files or whole trees.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/modernlint/loopconv/internal"
	"github.com/modernlint/loopconv/internal/loop"
	tt "github.com/modernlint/loopconv/internal/types"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Engine is the per-file analysis surface consumed by the file walkers.
type Engine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
}

// Config mirrors the .loopconv.yaml file.
type Config struct {
	// MaxCopySize is the largest element size, in bytes, still passed
	// by value in a rewritten loop.
	MaxCopySize int64 `yaml:"max-copy-size"`
	// MinConfidence is the lowest confidence tier that is still
	// converted: risky, reasonable, or safe.
	MinConfidence string `yaml:"min-confidence"`
	// NamingStyle controls synthesized element names: camelBack,
	// upperCamel, or lower.
	NamingStyle string `yaml:"naming-style"`
	// Verbose also reports loops rejected by the confidence threshold.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig is the policy used when no configuration file exists.
func DefaultConfig() Config {
	return Config{
		MaxCopySize:   16,
		MinConfidence: "reasonable",
		NamingStyle:   "camelBack",
	}
}

// LoadConfig reads a yaml configuration file. A missing file is not an
// error; defaults apply. Unset fields fall back to their defaults too.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if config.MaxCopySize <= 0 {
		config.MaxCopySize = DefaultConfig().MaxCopySize
	}
	if config.MinConfidence == "" {
		config.MinConfidence = DefaultConfig().MinConfidence
	}
	if config.NamingStyle == "" {
		config.NamingStyle = DefaultConfig().NamingStyle
	}
	return config, nil
}

// Policy converts the file-level configuration into the engine's
// conversion policy, validating the enum fields.
func (c Config) Policy() (loop.Config, error) {
	minConf, err := tt.ParseConfidence(c.MinConfidence)
	if err != nil {
		return loop.Config{}, err
	}
	style, err := loop.ParseNamingStyle(c.NamingStyle)
	if err != nil {
		return loop.Config{}, err
	}
	return loop.Config{
		MaxCopySize:   c.MaxCopySize,
		MinConfidence: minConf,
		NamingStyle:   style,
	}, nil
}

// New builds an engine from the configuration file at configPath.
func New(configPath string) (*internal.Engine, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	policy, err := config.Policy()
	if err != nil {
		return nil, err
	}
	engine := internal.NewEngine(policy)
	engine.Verbose = config.Verbose
	return engine, nil
}

// ProcessFiles runs the engine over each path, recursing into
// directories, and returns the combined issues.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}
	return allIssues, nil
}

// ProcessPath runs the engine over one file, or over every Go file under
// a directory. Directory walks fan out across NumCPU workers with a
// progress bar; issues come back grouped per file but in no particular
// file order.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !isGoFile(path) {
			return nil, nil
		}
		return engine.Run(path)
	}

	var files []string
	err = filepath.WalkDir(path, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isGoFile(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var (
		mu     sync.Mutex
		issues []tt.Issue
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, filePath := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fileIssues, err := engine.Run(filePath)
			bar.Add(1)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", filePath), zap.Error(err))
				}
				return err
			}
			mu.Lock()
			issues = append(issues, fileIssues...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fmt.Println()
	return issues, nil
}

// ProcessSources runs the engine over in-memory sources.
func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	sources [][]byte,
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issues, err := engine.RunSource(source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}
	return allIssues, nil
}

func isGoFile(path string) bool {
	return filepath.Ext(path) == ".go"
}
