package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/invertedv/voters/config"
	"github.com/invertedv/voters/raw"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := time.Now()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalln(err)
	}
	fmt.Fprintf(os.Stderr, "done, time: %v\n", time.Since(s))
}

// app is the state shared by the subcommands.
type app struct {
	opt     config.Options
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	opt, envErr := config.FromEnv(nil)
	a.opt = opt

	root := &cobra.Command{
		Use:           "voters",
		Short:         "Parse and analyze the Putnam County BoE voter export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(a.logger)
			return a.opt.Validate()
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.IntVar(&a.opt.Concur, "concur", a.opt.Concur, "rows mapped in parallel")
	pf.StringVar((*string)(&a.opt.Policy), "policy", string(a.opt.Policy), "short rows: abort or skip")
	pf.StringVar(&a.opt.Encoding, "encoding", a.opt.Encoding, "input code page: latin1, windows-1252 (default utf-8)")

	root.AddCommand(
		a.parseCmd(),
		a.efficiencyCmd(),
		a.audienceCmd(),
		a.loadCmd(),
		a.calllistCmd(),
	)
	return root
}

// read parses the export in fileName and logs how long it took.
func (a *app) read(ctx context.Context, fileName string) (*raw.Result, time.Duration, error) {
	s := time.Now()
	res, err := raw.ReadFile(ctx, fileName, a.opt.ReadOptions(a.logger))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", fileName, err)
	}
	d := time.Since(s)
	a.logger.Info("parsed", "file", fileName, "voters", len(res.Records), "time", d)
	return res, d, nil
}
