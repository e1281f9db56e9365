// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package config loads client settings from flags, STOMP_* environment variables and
// an optional configuration file, in that order of precedence.
package config

import (
	"crypto/tls"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vmware/stomp-transport-go/client"
	"github.com/vmware/stomp-transport-go/frame"
	"github.com/vmware/stomp-transport-go/streamio"
	"github.com/vmware/stomp-transport-go/transport"
)

// EnvPrefix prefixes the environment variables read by Load, STOMP_ADDRESS for instance.
const EnvPrefix = "STOMP"

// ClientConfig holds everything needed to open a stream and start a client on it.
type ClientConfig struct {
	Address            string               `mapstructure:"address"`
	Transport          string               `mapstructure:"transport"`
	WSPath             string               `mapstructure:"ws-path"`
	Host               string               `mapstructure:"host"`
	Login              string               `mapstructure:"login"`
	Passcode           string               `mapstructure:"passcode"`
	HeartBeat          frame.HeartBeatValue `mapstructure:"heart-beat"`
	RetryInterval      time.Duration        `mapstructure:"retry-interval"`
	HeartBeatMargin    time.Duration        `mapstructure:"heart-beat-margin"`
	ReadChunkSize      int                  `mapstructure:"read-chunk-size"`
	WriteBufferInitial int                  `mapstructure:"write-buffer-initial"`
	WriteBufferMax     int                  `mapstructure:"write-buffer-max"`
	RandomIDs          bool                 `mapstructure:"random-ids"`
	TLS                bool                 `mapstructure:"tls"`
	TLSInsecure        bool                 `mapstructure:"tls-insecure"`
	TLSServerName      string               `mapstructure:"tls-server-name"`
	LogLevel           string               `mapstructure:"log-level"`
	LogJSON            bool                 `mapstructure:"log-json"`
}

// ConfigureFlags registers one flag per setting on fs, carrying the defaults.
func ConfigureFlags(fs *pflag.FlagSet) {
	fs.String("address", "localhost:61613", "server address, host:port")
	fs.String("transport", transport.TCP, "tcp, ws or wss")
	fs.String("ws-path", "/stomp", "path of the websocket endpoint")
	fs.String("host", "/", "virtual host sent in CONNECT")
	fs.String("login", "", "login sent in CONNECT")
	fs.String("passcode", "", "passcode sent in CONNECT")
	fs.String("heart-beat", "0,0", "heart-beat offered in CONNECT, in milliseconds")
	fs.Duration("retry-interval", client.DefaultRetryInterval, "delay before a frame waiting for its receipt is written again")
	fs.Duration("heart-beat-margin", client.DefaultHeartBeatMargin, "tolerance applied to negotiated heart-beats")
	fs.Int("read-chunk-size", streamio.DefaultChunkSize, "size of a single read from the stream")
	fs.Int("write-buffer-initial", streamio.DefaultInitialCapacity, "initial size of the write buffer")
	fs.Int("write-buffer-max", streamio.DefaultMaxCapacity, "maximum size of the write buffer")
	fs.Bool("random-ids", false, "use random receipt, subscription and transaction ids")
	fs.Bool("tls", false, "use TLS, implied by the wss transport")
	fs.Bool("tls-insecure", false, "skip verification of the server certificate")
	fs.String("tls-server-name", "", "server name expected in the server certificate")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.Bool("log-json", false, "log as JSON")
}

// Load reads the configuration. flags may be nil, the defaults of ConfigureFlags apply
// then; path may be empty when there is no configuration file.
func Load(path string, flags *pflag.FlagSet) (*ClientConfig, error) {
	if flags == nil {
		flags = pflag.NewFlagSet("config", pflag.ContinueOnError)
		ConfigureFlags(flags)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file '%s': %w", path, err)
		}
	}

	cfg := &ClientConfig{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToHeartBeatHookFunc(),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func stringToHeartBeatHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(frame.HeartBeatValue{}) {
			return data, nil
		}
		return frame.ParseHeartBeat(data.(string))
	}
}

// Validate checks the settings Load cannot fix on its own.
func (c *ClientConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("config invalid, config missing server address")
	}
	if c.Host == "" {
		return fmt.Errorf("config invalid, config missing host")
	}
	switch c.Transport {
	case transport.TCP, transport.WebSocket, transport.SecureWebSocket:
	default:
		return fmt.Errorf("config invalid, unknown transport '%s'", c.Transport)
	}
	if c.Transport != transport.TCP && c.WSPath == "" {
		return fmt.Errorf("config invalid, config missing websocket path")
	}
	if c.WriteBufferInitial < streamio.MinCapacity {
		return fmt.Errorf("config invalid, write buffer must hold at least %d bytes", streamio.MinCapacity)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config invalid, unknown log level '%s'", c.LogLevel)
	}
	return nil
}

// TLSConfig returns the TLS settings of the connection, nil when TLS is off.
func (c *ClientConfig) TLSConfig() *tls.Config {
	if !c.TLS && c.Transport != transport.SecureWebSocket {
		return nil
	}
	return &tls.Config{
		ServerName:         c.TLSServerName,
		InsecureSkipVerify: c.TLSInsecure,
		MinVersion:         tls.VersionTLS12,
	}
}

// Endpoint returns where to connect.
func (c *ClientConfig) Endpoint() *transport.Endpoint {
	return &transport.Endpoint{
		Transport: c.Transport,
		Address:   c.Address,
		WSPath:    c.WSPath,
		TLSConfig: c.TLSConfig(),
	}
}

// ClientOptions translates the settings into client options.
func (c *ClientConfig) ClientOptions() []client.Option {
	opts := []client.Option{
		client.WithRetryInterval(c.RetryInterval),
		client.WithHeartBeatMargin(c.HeartBeatMargin),
		client.WithReadChunkSize(c.ReadChunkSize),
		client.WithWriteBuffer(c.WriteBufferInitial, c.WriteBufferMax),
	}
	if c.RandomIDs {
		opts = append(opts, client.WithRandomIDs())
	}
	return opts
}
