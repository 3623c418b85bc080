package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bastiangx/wordmux/internal/utils"
	"github.com/bastiangx/wordmux/pkg/config"
	"github.com/bastiangx/wordmux/pkg/contacts"
	"github.com/bastiangx/wordmux/pkg/dictionary"
	"github.com/bastiangx/wordmux/pkg/loader"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/bastiangx/wordmux/pkg/store"
	"github.com/bastiangx/wordmux/pkg/suggest"
	"github.com/charmbracelet/log"
)

// app holds everything a running command shares.
type app struct {
	cfg        *config.Config
	configPath string
	packsDir   string

	db       *store.Store
	pool     *loader.Pool
	provider *suggest.Provider

	closeOnce sync.Once
}

// loadConfig reads the config and resolves the data paths around it.
func loadConfig() (*config.Config, string, error) {
	cfg, configPath, err := config.LoadConfigWithPriority(configFlag)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))
	return cfg, configPath, nil
}

func (a *app) storePath() string {
	return config.ResolvePath(a.configPath, a.cfg.Dict.StorePath, "words.db")
}

func (a *app) contactsPath() string {
	return config.ResolvePath(a.configPath, a.cfg.Dict.ContactsFile, "contacts.yaml")
}

// openStore opens the database without starting a provider.
func openStore(ctx context.Context) (*app, error) {
	cfg, configPath, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, configPath: configPath}
	if a.db, err = store.Open(ctx, a.storePath()); err != nil {
		return nil, err
	}
	return a, nil
}

// openApp loads the config, opens the store and configures a provider
// from the discovered packs. Loading continues in the background.
func openApp(ctx context.Context) (*app, error) {
	a, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.resolvePacksDir(); err != nil {
		a.db.Close()
		return nil, err
	}

	a.pool = loader.NewPool(a.cfg.Dict.LoadWorkers)
	contactsFile := contacts.File{Path: a.contactsPath()}
	a.provider = suggest.NewProvider(a.pool, suggest.Factory{
		User: func(language string) source.Learner {
			return a.db.UserDictionary(language)
		},
		Abbreviations: func(language string) source.Dictionary {
			return a.db.Abbreviations(language)
		},
		Auto: func(language string, threshold int) source.Editable {
			return a.db.AutoDictionary(language, threshold)
		},
		Contacts: func() source.Predictor {
			return contacts.NewDictionary(contactsFile)
		},
	})
	a.provider.ApplySettings(a.cfg.Settings())
	a.provider.SetIncognito(a.cfg.Suggest.Incognito)

	builders, err := a.builders()
	if err != nil {
		log.Warnf("No language packs loaded: %v", err)
	}
	a.provider.Configure(builders)
	return a, nil
}

// resolvePacksDir picks the packs directory from the flag or the config.
func (a *app) resolvePacksDir() error {
	packsDir := a.cfg.Dict.PacksDir
	if packsFlag != "" {
		packsDir = packsFlag
	}
	configDir := ""
	if a.configPath != "" {
		configDir = filepath.Dir(a.configPath)
	}
	resolver, err := utils.NewPathResolver(configDir)
	if err != nil {
		return fmt.Errorf("resolving paths: %w", err)
	}
	a.packsDir = resolver.GetPacksDir(packsDir)
	log.Debugf("Using packs dir at: %s", a.packsDir)
	return nil
}

// builders discovers the configured packs. It is also the reload hook.
func (a *app) builders() ([]suggest.Builder, error) {
	packs, err := dictionary.DiscoverPacks(a.packsDir, a.cfg.Dict.Languages, a.cfg.Dict.MaxWords)
	if err != nil {
		return nil, err
	}
	out := make([]suggest.Builder, len(packs))
	for i, p := range packs {
		log.Debugf("Pack %s (%s) at %s", p.ID(), p.Language(), p.Dir())
		out[i] = p
	}
	return out, nil
}

// close shuts the provider down before the loaders and the store it uses.
func (a *app) close() {
	a.closeOnce.Do(func() {
		if a.provider != nil {
			a.provider.Close()
		}
		if a.pool != nil {
			a.pool.Close()
		}
		if a.db != nil {
			if err := a.db.Close(); err != nil {
				log.Errorf("Closing store: %v", err)
			}
		}
	})
}
