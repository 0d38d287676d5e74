// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocconfig provides configuration parsing and validation for allocctl.
//
// Configuration is stored at ~/.config/allocctl/config.yaml (or $ALLOCCTL_CONFIG_DIR/config.yaml).
// State is stored at ~/.local/share/allocctl/v1/state (or $ALLOCCTL_DATA_DIR/v1/state).
package allocconfig

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/bufdev/allocctl/internal/alloc/allocclass"
	"github.com/bufdev/allocctl/internal/alloc/allocpath"
	"github.com/bufdev/allocctl/internal/alloc/alloctax"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultRedirectURI is the redirect URI used when none is configured.
const DefaultRedirectURI = "http://localhost:3000"

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# Questrade API configuration.
#
# Register a personal app at https://login.questrade.com under
# App Hub > Register a personal app, with the OAuth implicit grant
# and the account data scope.
questrade:
  # The consumer key of the registered app.
  #
  # Required.
  client_id: ""
  # The callback URL registered with the app. After authorizing, copy the
  # URL the browser is redirected to and pass it to "allocctl auth token".
  #
  # Optional. Defaults to http://localhost:3000.
  redirect_uri: http://localhost:3000
# Post-tax adjustment configuration.
tax:
  # The tax rate in percent applied to RRSP holdings in the post-tax view.
  #
  # Optional. Defaults to 20. Must be at least 0 and less than 100.
  rate_percent: 20
# The asset class of every held symbol, as fractions of its market value.
#
# Required for every held symbol. stocks + bonds must not exceed 1.
asset_classes:
#  - symbol: VBAL.TO
#    stocks: 0.6
#    bonds: 0.4
#  - symbol: XBB.TO
#    stocks: 0
#    bonds: 1
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// Questrade holds the Questrade API configuration.
	Questrade ExternalQuestradeConfig `yaml:"questrade"`
	// Tax holds the post-tax adjustment configuration.
	Tax ExternalTaxConfig `yaml:"tax"`
	// AssetClasses is the list of symbol asset classes.
	AssetClasses []ExternalAssetClassConfig `yaml:"asset_classes"`
}

// ExternalQuestradeConfig holds Questrade-specific configuration.
type ExternalQuestradeConfig struct {
	ClientID    string `yaml:"client_id"`
	RedirectURI string `yaml:"redirect_uri"`
}

// ExternalTaxConfig holds the post-tax adjustment configuration.
type ExternalTaxConfig struct {
	// RatePercent is nil when unset.
	RatePercent *float64 `yaml:"rate_percent"`
}

// ExternalAssetClassConfig holds the asset class of a symbol.
type ExternalAssetClassConfig struct {
	Symbol string  `yaml:"symbol"`
	Stocks float64 `yaml:"stocks"`
	Bonds  float64 `yaml:"bonds"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// QuestradeClientID is the consumer key of the registered Questrade app.
	QuestradeClientID string
	// QuestradeRedirectURI is the callback URL registered with the app.
	QuestradeRedirectURI string
	// TaxRatePercent is the tax rate applied to RRSP holdings in the post-tax view.
	TaxRatePercent decimal.Decimal
	// AssetClassMap maps symbols to their asset class weights.
	AssetClassMap *allocclass.Map
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
func NewConfig(externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	if externalConfig.Questrade.ClientID == "" {
		return nil, errors.New("questrade.client_id is required")
	}
	redirectURI := externalConfig.Questrade.RedirectURI
	if redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}
	if parsedURL, err := url.Parse(redirectURI); err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("questrade.redirect_uri %q must be an absolute URL", redirectURI)
	}
	taxRatePercent := decimal.NewFromInt(alloctax.DefaultRatePercent)
	if externalConfig.Tax.RatePercent != nil {
		taxRatePercent = decimal.NewFromFloat(*externalConfig.Tax.RatePercent)
	}
	if _, err := alloctax.NewPolicy(false, taxRatePercent); err != nil {
		return nil, fmt.Errorf("tax.rate_percent: %w", err)
	}
	// Build the asset class map, checking for duplicates.
	weights := make(map[string]allocclass.Weights, len(externalConfig.AssetClasses))
	for _, assetClass := range externalConfig.AssetClasses {
		if assetClass.Symbol == "" {
			return nil, errors.New("asset_classes symbol is required")
		}
		if _, ok := weights[assetClass.Symbol]; ok {
			return nil, fmt.Errorf("duplicate asset_classes symbol %q", assetClass.Symbol)
		}
		weights[assetClass.Symbol] = allocclass.Weights{
			Stocks: decimal.NewFromFloat(assetClass.Stocks),
			Bonds:  decimal.NewFromFloat(assetClass.Bonds),
		}
	}
	assetClassMap, err := allocclass.NewMap(weights)
	if err != nil {
		return nil, err
	}
	return &Config{
		QuestradeClientID:    externalConfig.Questrade.ClientID,
		QuestradeRedirectURI: redirectURI,
		TaxRatePercent:       taxRatePercent,
		AssetClassMap:        assetClassMap,
	}, nil
}

// ReadConfig reads and validates the configuration file from the given config directory.
// Returns a clear error message directing users to run "allocctl config init" if the file is missing.
func ReadConfig(configDirPath string) (*Config, error) {
	filePath := allocpath.ConfigFilePath(configDirPath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found at %s, run \"allocctl config init\" to create one", filePath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	config, err := NewConfig(externalConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	return config, nil
}

// InitConfig creates a new configuration file with a documented template.
// Creates the config directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(configDirPath string) (string, error) {
	filePath := allocpath.ConfigFilePath(configDirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	if err := os.MkdirAll(configDirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(configTemplate), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

// ValidateConfig reads and validates the configuration file from the given config directory.
func ValidateConfig(configDirPath string) error {
	_, err := ReadConfig(configDirPath)
	return err
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
