package commands

import (
	"context"
	"fmt"
	"os"
	"time"
	"unidocs-backend/lib/artifactstore"
	"unidocs-backend/lib/configutil"
	"unidocs-backend/services/docgen"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docgen-cli",
	Short: "docgen-cli extracts rendering code from the portal's bundles and generates documents with it.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	PortalUrl   string `json:"portal_url"`
	ApiUrl      string `json:"api_url"`
	AccessToken string `json:"access_token"`
	// path to the vendored document-layout library bundle
	LayoutLibrary string `json:"layout_library"`
	OutputDir     string `json:"output_dir"`
	StorePath     string `json:"store_path"`
	// when set, every upstream http exchange is dumped there
	DebugHttpDir string `json:"debug_http_dir"`
}

func newService() (*docgen.Service, func(), error) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		return nil, nil, fmt.Errorf("read config.json5: %w", err)
	}

	layout := ""
	if cfg.LayoutLibrary != "" {
		raw, err := os.ReadFile(cfg.LayoutLibrary)
		if err != nil {
			return nil, nil, fmt.Errorf("read layout library: %w", err)
		}
		layout = string(raw)
	}

	storePath := cfg.StorePath
	if storePath == "" {
		storePath = "artifacts.db"
	}
	store, err := artifactstore.Open(storePath)
	if err != nil {
		return nil, nil, err
	}

	service, err := docgen.NewService(docgen.Options{
		PortalUrl:     cfg.PortalUrl,
		ApiUrl:        cfg.ApiUrl,
		AccessToken:   cfg.AccessToken,
		LayoutLibrary: layout,
		OutputDir:     cfg.OutputDir,
		DebugHttpDir:  cfg.DebugHttpDir,
		Now:           time.Now,
	}, store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return service, func() { store.Close() }, nil
}
