// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package process

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

// EnvPrefix is the prefix of environment variables that override flags.
const EnvPrefix = "kvstress"

// Exec runs a *cobra.Command and sets up process-wide configuration:
// stdlib flags, environment overrides and logging flags.
func Exec(cmd *cobra.Command) {
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	for _, sub := range append([]*cobra.Command{cmd}, cmd.Commands()...) {
		bindEnv(sub)
	}
	Must(cmd.Execute())
}

// bindEnv wraps the command so that flags not set on the command line are
// read from KVSTRESS_* environment variables before it runs.
func bindEnv(cmd *cobra.Command) {
	runE := cmd.RunE
	if runE == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := ApplyEnv(cmd.Flags()); err != nil {
			return err
		}
		return runE(cmd, args)
	}
}

// ApplyEnv sets every flag that was not changed on the command line from
// the matching environment variable. The flag "log.level" is read from
// KVSTRESS_LOG_LEVEL.
func ApplyEnv(flags *pflag.FlagSet) error {
	vip := viper.New()
	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vip.AutomaticEnv()

	var group errs.Group
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !vip.IsSet(f.Name) {
			return
		}
		if err := f.Value.Set(vip.GetString(f.Name)); err != nil {
			group.Add(Error.New("invalid value for %q: %v", f.Name, err))
			return
		}
		f.Changed = true
	})
	return group.Err()
}

// Ctx returns the context for the command. It is cancelled on SIGINT or
// SIGTERM; a second signal terminates the process immediately.
func Ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
		case <-ctx.Done():
			signal.Stop(c)
			return
		}
		cancel()
		<-c
		os.Exit(1)
	}()

	return ctx, func() {
		signal.Stop(c)
		cancel()
	}
}

// Must checks for errors
func Must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
