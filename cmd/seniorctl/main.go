package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/seniorinteract/internal/config"
	"github.com/jrsteele09/seniorinteract/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, errNoSession) {
			log.Error().Err(err).Msg("Command failed")
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	var c config.Config = config.New()
	logging.Setup(c.GetLogLevel(), c.GetEnv() == "DEV")

	args, profile, err := parseGlobalFlags(args, out)
	if err != nil {
		return err
	}
	if profile != "" {
		c = profileConfig{Config: c, profile: profile}
	}

	if len(args) == 0 || args[0] == "help" {
		displayAppname(out, c.GetAppName())
		printUsage(out)
		return nil
	}
	if args[0] == "version" {
		fmt.Fprintf(out, "%s %s\n", c.GetAppName(), c.GetAppVersion())
		return nil
	}

	a, err := newApp(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.dispatch(ctx, args, out)
}

// profileConfig selects a device profile other than the configured one
type profileConfig struct {
	config.Config
	profile string
}

func (p profileConfig) GetProfile() string {
	return p.profile
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
