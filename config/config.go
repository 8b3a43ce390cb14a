// Package config holds the run options shared by the voters commands. Defaults come from the
// environment and are overridden by command line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/invertedv/voters/chload"
	"github.com/invertedv/voters/efficiency"
	"github.com/invertedv/voters/raw"
	"github.com/spf13/cast"
)

// Environment variables read by FromEnv.
const (
	EnvConcur     = "VOTERS_CONCUR"
	EnvPolicy     = "VOTERS_POLICY"
	EnvEncoding   = "VOTERS_ENCODING"
	EnvCutoff     = "VOTERS_CUTOFF"
	EnvBar        = "VOTERS_BAR"
	EnvCHHost     = "VOTERS_CH_HOST"
	EnvCHUser     = "VOTERS_CH_USER"
	EnvCHPassword = "VOTERS_CH_PASSWORD"
	EnvCHDatabase = "VOTERS_CH_DATABASE"
	EnvCHMemory   = "VOTERS_CH_MEMORY"
)

// Options configure a run.
type Options struct {
	Concur   int
	Policy   raw.Policy
	Encoding string
	Cutoff   int
	Bar      int

	CHHost     string
	CHUser     string
	CHPassword string
	CHDatabase string
	CHMemory   int64
}

// Defaults are the options with nothing set in the environment.
func Defaults() Options {
	return Options{
		Concur:     1,
		Policy:     raw.Abort,
		Cutoff:     efficiency.DefaultCutoff,
		Bar:        efficiency.DefaultBar,
		CHHost:     "127.0.0.1",
		CHUser:     "default",
		CHDatabase: "default",
	}
}

// FromEnv starts from Defaults and applies the VOTERS_ variables found by lookup
// (os.LookupEnv when nil). Values that do not convert are reported and the default kept.
func FromEnv(lookup func(string) (string, bool)) (Options, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	o := Defaults()
	var errs []error
	setInt := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := cast.ToIntE(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}
	setString := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	setInt(EnvConcur, &o.Concur)
	setInt(EnvCutoff, &o.Cutoff)
	setInt(EnvBar, &o.Bar)
	if v, ok := lookup(EnvPolicy); ok {
		o.Policy = raw.Policy(v)
	}
	setString(EnvEncoding, &o.Encoding)
	setString(EnvCHHost, &o.CHHost)
	setString(EnvCHUser, &o.CHUser)
	setString(EnvCHPassword, &o.CHPassword)
	setString(EnvCHDatabase, &o.CHDatabase)
	if v, ok := lookup(EnvCHMemory); ok {
		n, err := cast.ToInt64E(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvCHMemory, err))
		} else {
			o.CHMemory = n
		}
	}
	return o, errors.Join(errs...)
}

// Validate checks the parse and scoring options.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Concur, validation.Required, validation.Min(1)),
		validation.Field(&o.Policy, validation.Required, validation.In(raw.Abort, raw.Skip)),
		validation.Field(&o.Encoding, validation.By(func(v any) error {
			if !raw.ValidEncoding(v.(string)) {
				return validation.NewError("validation_encoding", "unknown encoding")
			}
			return nil
		})),
		validation.Field(&o.Cutoff, validation.Required, validation.Min(1), validation.Max(99)),
		validation.Field(&o.Bar, validation.Min(0)),
	)
}

var hostOnly = regexp.MustCompile(`^[^:/]+$`)

// ValidateClickHouse checks the connection options.
func (o Options) ValidateClickHouse() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.CHHost, validation.Required,
			validation.Match(hostOnly).Error("host without a port")),
		validation.Field(&o.CHUser, validation.Required),
		validation.Field(&o.CHMemory, validation.Min(int64(0))),
	)
}

// ReadOptions are the reader settings for these options.
func (o Options) ReadOptions(logger *slog.Logger) raw.ReadOptions {
	return raw.ReadOptions{
		Encoding: o.Encoding,
		Concur:   o.Concur,
		Policy:   o.Policy,
		Logger:   logger,
	}
}

// ClickHouse are the connection settings for these options.
func (o Options) ClickHouse() chload.ConnectOptions {
	return chload.ConnectOptions{
		Host:      o.CHHost,
		User:      o.CHUser,
		Password:  o.CHPassword,
		Database:  o.CHDatabase,
		MaxMemory: o.CHMemory,
	}
}
