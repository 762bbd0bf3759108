package cmd

import (
	"fmt"
	"time"

	"github.com/kamusis/brewq/internal/brew"
	"github.com/kamusis/brewq/internal/config"
	"github.com/kamusis/brewq/internal/launcher"
	"github.com/kamusis/brewq/internal/namecache"
	"github.com/kamusis/brewq/internal/pipeline"
)

// brewRunner and launcherOptions are replaced in tests.
var (
	brewRunner      brew.Runner = brew.ExecRunner{Grace: 2 * time.Second}
	launcherOptions []launcher.Option
)

// app is everything a command needs to answer queries.
type app struct {
	cfg     *config.Config
	client  *brew.Client
	cache   *namecache.Cache
	store   *namecache.FileStore // nil when persist_names is off
	handler *pipeline.Handler
}

// newApp loads the config, applies flag overrides and wires brew, the name
// cache, the launcher and the handler. It fails when brew cannot be found.
func newApp(overrides ...func(*config.Config)) (*app, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	for _, o := range overrides {
		o(cfg)
	}
	setupLogging(cfg.LogLevel)

	client, err := brew.New(cfg.BrewPath,
		brew.WithRunner(brewRunner),
		brew.WithPollInterval(cfg.PollInterval),
	)
	if err != nil {
		return nil, fmt.Errorf("%w\n  brewq requires Homebrew. Install it from https://brew.sh or set brew_path in ~/.brewq/brewq.yaml.", err)
	}

	a := &app{cfg: cfg, client: client}
	cacheOpts := []namecache.Option{namecache.WithStaleness(cfg.Staleness)}
	if cfg.PersistNames {
		p, err := config.NamesPath()
		if err != nil {
			return nil, err
		}
		a.store = namecache.NewFileStore(p)
		cacheOpts = append(cacheOpts, namecache.WithStore(a.store))
	}
	a.cache = namecache.New(client, cacheOpts...)

	lopts := []launcher.Option{
		launcher.WithTerminal(cfg.Terminal),
		launcher.WithOpener(cfg.Opener),
	}
	lopts = append(lopts, launcherOptions...)

	a.handler = pipeline.New(a.cache, client, launcher.New(lopts...),
		pipeline.WithBatchSize(cfg.BatchSize),
		pipeline.WithTrigger(cfg.Trigger),
		pipeline.WithFuzzy(cfg.Fuzzy),
		pipeline.WithBrewCommand(cfg.BrewPath),
	)
	return a, nil
}
