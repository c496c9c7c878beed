/*
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the chaincode's runtime settings from an optional
// chaincode.env file and the environment.
package config

import (
	"os"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the settings for running the chaincode, either launched by the
// peer or as an external service.
type Config struct {
	CCID         string `mapstructure:"CHAINCODE_ID"`
	Address      string `mapstructure:"CHAINCODE_SERVER_ADDRESS"`
	TLSDisabled  bool   `mapstructure:"CHAINCODE_TLS_DISABLED"`
	TLSKey       string `mapstructure:"CHAINCODE_TLS_KEY"`
	TLSCert      string `mapstructure:"CHAINCODE_TLS_CERT"`
	ClientCACert string `mapstructure:"CHAINCODE_CLIENT_CA_CERT"`
	LogLevel     string `mapstructure:"CORE_CHAINCODE_LOGGING_LEVEL"`
}

var defaults = map[string]interface{}{
	"CHAINCODE_ID":                 "",
	"CHAINCODE_SERVER_ADDRESS":     "",
	"CHAINCODE_TLS_DISABLED":       true,
	"CHAINCODE_TLS_KEY":            "",
	"CHAINCODE_TLS_CERT":           "",
	"CHAINCODE_CLIENT_CA_CERT":     "",
	"CORE_CHAINCODE_LOGGING_LEVEL": "info",
}

// Load reads chaincode.env from path when present; environment variables take
// precedence over the file.
func Load(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("chaincode")
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, errors.Wrap(err, "cannot read chaincode.env")
		}
	}
	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "cannot decode config")
	}
	return cfg, cfg.validate()
}

// ExternalService reports whether the chaincode runs as a service the peer
// connects to, instead of being launched by the peer.
func (c Config) ExternalService() bool {
	return c.Address != ""
}

func (c Config) validate() error {
	if c.CCID != "" && c.Address == "" {
		return errors.New("CHAINCODE_SERVER_ADDRESS is required when CHAINCODE_ID is set")
	}
	if c.Address != "" && c.CCID == "" {
		return errors.New("CHAINCODE_ID is required when CHAINCODE_SERVER_ADDRESS is set")
	}
	if !c.TLSDisabled && (c.TLSKey == "" || c.TLSCert == "") {
		return errors.New("CHAINCODE_TLS_KEY and CHAINCODE_TLS_CERT are required when TLS is enabled")
	}
	return nil
}

// TLSProperties loads the key material named by the config.
func (c Config) TLSProperties() (shim.TLSProperties, error) {
	props := shim.TLSProperties{Disabled: c.TLSDisabled}
	var err error

	if !c.TLSDisabled {
		if props.Key, err = os.ReadFile(c.TLSKey); err != nil {
			return props, errors.Wrap(err, "error while reading the TLS key")
		}
		if props.Cert, err = os.ReadFile(c.TLSCert); err != nil {
			return props, errors.Wrap(err, "error while reading the TLS cert")
		}
	}
	// peer certificates are verified only when a client CA is given
	if c.ClientCACert != "" {
		if props.ClientCACerts, err = os.ReadFile(c.ClientCACert); err != nil {
			return props, errors.Wrap(err, "error while reading the client CA cert")
		}
	}
	return props, nil
}
