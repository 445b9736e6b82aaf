package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/castlemaker/internal/client"
	"github.com/pixil98/castlemaker/internal/protocol"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type options struct {
	Addr      string
	Transport string
	Path      string
	Name      string
	Print     bool
	Timeout   time.Duration
	LogFile   string
	LogLevel  string
}

// loadOptions merges flags, CASTLEMAKER_* environment variables and an
// optional config file, in that order of precedence.
func loadOptions(args []string) (options, error) {
	fs := pflag.NewFlagSet("castlemaker-client", pflag.ContinueOnError)
	fs.String("config", "", "read options from this file (yaml, json or toml)")
	fs.String("addr", fmt.Sprintf("127.0.0.1:%d", protocol.DefaultPort), "server address")
	fs.String("transport", client.TransportTCP, "tcp, ssh or ws")
	fs.String("path", "/ws", "websocket endpoint path")
	fs.String("name", "Lolz", "player name")
	fs.Bool("print", false, "print the player list and map 0, then exit")
	fs.Duration("timeout", 10*time.Second, "dial timeout")
	fs.String("log-file", "", "write logs to this file instead of stderr")
	fs.String("log-level", "warn", "minimum log level")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("CASTLEMAKER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return options{}, fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return options{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	o := options{
		Addr:      v.GetString("addr"),
		Transport: v.GetString("transport"),
		Path:      v.GetString("path"),
		Name:      v.GetString("name"),
		Print:     v.GetBool("print"),
		Timeout:   v.GetDuration("timeout"),
		LogFile:   v.GetString("log-file"),
		LogLevel:  v.GetString("log-level"),
	}

	switch o.Transport {
	case client.TransportTCP, client.TransportSSH, client.TransportWebSocket:
	default:
		return options{}, fmt.Errorf("unknown transport %q", o.Transport)
	}
	if o.Name == "" {
		return options{}, fmt.Errorf("name must not be empty")
	}
	if o.Timeout <= 0 {
		return options{}, fmt.Errorf("timeout must be positive")
	}

	return o, nil
}
