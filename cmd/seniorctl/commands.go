package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/seniorinteract/auth"
	internalerrors "github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/internal/utils"
	"github.com/jrsteele09/seniorinteract/rut"
	"github.com/jrsteele09/seniorinteract/sessions"
	"github.com/jrsteele09/seniorinteract/users"
)

var (
	errUsage     = errors.New("usage")
	errNoSession = errors.New("no active session")
)

const usage = `Usage: seniorctl [-profile name] <command> [flags]

Commands:
  rut validate <rut>        Check a RUT such as 12345678-5
  rut format <rut>          Print a RUT as 12.345.678-5
  rut check-digit <body>    Compute the check digit of a RUT body
  register [flags]          Create an account and start a session
  login -email -password    Start a session
  logout                    End the current session
  status                    Verify the current session with the provider
  whoami                    Show the user of the current session
  landing                   Print the page to open for the current state
  recover -email            Send password recovery instructions
  version                   Print the version
`

func printUsage(out io.Writer) {
	fmt.Fprint(out, usage)
}

func parseGlobalFlags(args []string, out io.Writer) ([]string, string, error) {
	fs := flag.NewFlagSet("seniorctl", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { printUsage(out) }
	profile := fs.String("profile", "", "device profile holding the session slot")
	if err := fs.Parse(args); err != nil {
		return nil, "", errUsage
	}
	return fs.Args(), *profile, nil
}

func (a *app) dispatch(ctx context.Context, args []string, out io.Writer) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "rut":
		return runRUT(rest, out)
	case "register":
		return a.register(ctx, rest, out)
	case "login":
		return a.login(ctx, rest, out)
	case "logout":
		return a.logout(ctx, out)
	case "status":
		return a.status(ctx, out)
	case "whoami":
		return a.whoami(ctx, out)
	case "landing":
		fmt.Fprintln(out, a.service.LandingPath(ctx))
		return nil
	case "recover":
		return a.recoverPassword(ctx, rest, out)
	default:
		fmt.Fprintf(out, "unknown command %q\n\n", cmd)
		printUsage(out)
		return errUsage
	}
}

func runRUT(args []string, out io.Writer) error {
	if len(args) != 2 {
		printUsage(out)
		return errUsage
	}

	switch args[0] {
	case "validate":
		if !rut.Validate(args[1]) {
			fmt.Fprintln(out, auth.MsgInvalidRUT)
			return internalerrors.ErrInvalidRUT
		}
		fmt.Fprintln(out, "valid")
		return nil
	case "format":
		fmt.Fprintln(out, rut.Format(args[1]))
		return nil
	case "check-digit":
		digit, err := rut.ComputeCheckDigit(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(digit))
		return nil
	default:
		printUsage(out)
		return errUsage
	}
}

func (a *app) register(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("register", out)
	var req auth.RegistrationRequest
	var role string
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.Name, "name", "", "first name")
	fs.StringVar(&req.Surname, "surname", "", "surname")
	fs.StringVar(&req.RUT, "rut", "", "RUT, e.g. 12345678-5")
	fs.StringVar(&role, "role", "", "administrador, moderador or adulto_mayor")
	fs.StringVar(&req.BirthDate, "birth-date", "", "YYYY-MM-DD")
	fs.StringVar(&req.Phone, "phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	req.Role = users.ParseRole(role)
	if !req.Role.Valid() {
		fmt.Fprintf(out, "unknown role %q\n", role)
		return errUsage
	}

	outcome, err := a.service.Register(ctx, req)
	return report(out, outcome, err)
}

func (a *app) login(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("login", out)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	outcome, err := a.service.SignIn(ctx, strings.TrimSpace(*email), *password)
	return report(out, outcome, err)
}

func (a *app) logout(ctx context.Context, out io.Writer) error {
	outcome, err := a.service.SignOut(ctx)
	return report(out, outcome, err)
}

func (a *app) recoverPassword(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("recover", out)
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	outcome, err := a.service.RecoverPassword(ctx, strings.TrimSpace(*email))
	return report(out, outcome, err)
}

func (a *app) status(ctx context.Context, out io.Writer) error {
	user, ok := a.service.VerifyExistingSession(ctx)
	if !ok {
		fmt.Fprintln(out, "no active session")
		return errNoSession
	}
	fmt.Fprintf(out, "active: %s (%s)\n", user.Email, user.Role)
	fmt.Fprintf(out, "redirect: %s\n", auth.RedirectPathForRole(user.Role))
	return nil
}

func (a *app) whoami(ctx context.Context, out io.Writer) error {
	user, ok := a.service.CheckPageAccess(ctx)
	if !ok {
		fmt.Fprintln(out, "no active session")
		return errNoSession
	}
	printUser(out, user)
	return nil
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// report prints the user-facing result of a flow
func report(out io.Writer, outcome *auth.Outcome, err error) error {
	if err != nil {
		fmt.Fprintln(out, auth.Message(err))
		return err
	}
	fmt.Fprintln(out, outcome.Message)
	if outcome.Redirect != "" {
		fmt.Fprintf(out, "redirect: %s\n", outcome.Redirect)
	}
	return nil
}

func printUser(out io.Writer, user *sessions.UserSnapshot) {
	identifier := utils.Value(user.Identifier).Formatted()
	fmt.Fprintf(out, "id:         %s\n", user.ID)
	fmt.Fprintf(out, "email:      %s\n", user.Email)
	fmt.Fprintf(out, "name:       %s %s\n", user.Name, user.Surname)
	fmt.Fprintf(out, "rut:        %s\n", identifier)
	fmt.Fprintf(out, "role:       %s\n", user.Role)
	fmt.Fprintf(out, "birth date: %s\n", user.BirthDate)
	fmt.Fprintf(out, "phone:      %s\n", user.Phone)
}
