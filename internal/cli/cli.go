package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/anchit2000/flowcanvas/internal/config"
	"github.com/anchit2000/flowcanvas/pkg/blocktype"
	"github.com/anchit2000/flowcanvas/pkg/buildinfo"
	"github.com/anchit2000/flowcanvas/pkg/cache"
	"github.com/anchit2000/flowcanvas/pkg/editor"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	versionTmpl := buildinfo.Template()
	root := &cobra.Command{
		Use:          config.AppName,
		Short:        "flowcanvas edits block-and-wire flow documents",
		Long:         `flowcanvas is a visual flow editor core: place typed blocks, wire their ports together and import or export the resulting flow document from the terminal, over HTTP or in batch.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(versionTmpl)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flowcanvas/config.toml)")

	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.typesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			c.Logger.Debug("No config directory, using defaults", "err", err)
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("Loaded config", "path", path, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Template provider
// =============================================================================

// sourceOptions are the per-command overrides of the template settings.
type sourceOptions struct {
	dir     string
	url     string
	noCache bool
}

func (o *sourceOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.dir, "templates", "", "directory of extra block-type templates")
	cmd.Flags().StringVar(&o.url, "template-url", "", "template server base URL")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "do not cache remote templates")
}

// newRegistry builds the template registry: local directory first, then the
// template server behind the cache, then the built-in templates. The
// returned close function releases the cache.
func (c *CLI) newRegistry(ctx context.Context, o sourceOptions) (*blocktype.Registry, func(), error) {
	dir, url := c.cfg.Templates.Dir, c.cfg.Templates.URL
	if o.dir != "" {
		dir = o.dir
	}
	if o.url != "" {
		url = o.url
	}

	var chain blocktype.ChainSource
	if dir != "" {
		chain = append(chain, blocktype.NewDirSource(dir))
	}

	closer := func() {}
	if url != "" {
		remote, err := blocktype.NewHTTPSource(url)
		if err != nil {
			return nil, nil, err
		}
		cc, err := c.newCache(ctx, o.noCache)
		if err != nil {
			return nil, nil, err
		}
		closer = func() {
			if err := cc.Close(); err != nil {
				c.Logger.Debug("Closing cache", "err", err)
			}
		}
		keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.cfg.Cache.Prefix)
		chain = append(chain, blocktype.NewCachedSource(remote, cc, keyer, c.cfg.Cache.TTL.Duration))
	}
	chain = append(chain, blocktype.EmbeddedSource{})

	c.Logger.Debug("Template sources", "chain", chain.Name())
	return blocktype.NewRegistry(chain), closer, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: c.cfg.Cache.RedisAddr,
			DB:   c.cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", c.cfg.Cache.RedisAddr, err)
		}
		return rc, nil
	default:
		dir, err := config.CacheDir()
		if err != nil {
			c.Logger.Warn("No cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, fmt.Errorf("open cache dir: %w", err)
		}
		return fc, nil
	}
}

// newEditor creates an editor session configured from the config file.
// Later options win.
func (c *CLI) newEditor(reg *blocktype.Registry, opts ...editor.Option) *editor.Editor {
	base := []editor.Option{
		editor.WithLogger(c.Logger),
		editor.WithAnchorY(c.cfg.Editor.AnchorY),
		editor.WithSurfaceSize(c.cfg.Editor.Width, c.cfg.Editor.Height),
	}
	return editor.New(reg, append(base, opts...)...)
}
