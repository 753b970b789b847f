package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/esimov/emojiconv/utils"
	"github.com/spf13/pflag"
)

const HelpBanner = `
┌─┐┌┬┐┌─┐ ┬┬┌─┐┌─┐┌┐┌┬  ┬
├┤ ││││ │ ││││  │ ││││└┐┌┘
└─┘┴ ┴└─┘└┘┴└─┘└─┘┘└┘ └┘

Convert SVG emoji icons to PNG files and gather emoji information.
    Version: %s

Usage:
    emojiconv convert --svg-directory <dir> --output-directory <dir> [options]
    emojiconv get-info [--output-path <path>] [--image-directory-path <dir>]
    emojiconv version

`

// Exit codes returned by the commands.
const (
	exitOK       = 0
	exitFailure  = 1
	exitDeclined = 10
)

// Version indicates the current build version.
var Version string

func main() {
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

// run dispatches the subcommand found in args and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		color:  utils.IsTerminal(stderr),
	}

	if len(args) == 0 {
		c.usage()
		return exitFailure
	}

	switch args[0] {
	case "convert":
		return c.convert(ctx, args[1:])
	case "get-info":
		return c.getInfo(ctx, args[1:])
	case "version", "--version":
		fmt.Fprintln(stdout, version())
		return exitOK
	case "help", "-h", "--help":
		c.usage()
		return exitOK
	default:
		c.usage()
		c.errorf("Unknown command '%s'.", args[0])
		return exitFailure
	}
}

// cli holds the standard streams used by the commands.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	color  bool
}

func (c *cli) decorate(s string, msgType utils.MessageType) string {
	if !c.color {
		return s
	}
	return utils.DecorateText(s, msgType)
}

func (c *cli) errorf(format string, args ...any) {
	fmt.Fprintln(c.stderr, c.decorate(fmt.Sprintf(format, args...), utils.ErrorMessage))
}

func (c *cli) warnf(format string, args ...any) {
	fmt.Fprintln(c.stderr, c.decorate(fmt.Sprintf(format, args...), utils.WarningMessage))
}

func (c *cli) infof(format string, args ...any) {
	fmt.Fprintln(c.stdout, c.decorate(fmt.Sprintf(format, args...), utils.StatusMessage))
}

func (c *cli) successf(format string, args ...any) {
	fmt.Fprintln(c.stdout, c.decorate(fmt.Sprintf(format, args...), utils.SuccessMessage))
}

func (c *cli) usage() {
	fmt.Fprintf(c.stderr, HelpBanner, version())
}

// newFlagSet returns a flag set which reports parse errors on stderr.
func (c *cli) newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage of %s:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

// newSpinner returns a progress indicator, or nil if stderr is not a terminal.
func (c *cli) newSpinner(msg string) *utils.Spinner {
	if !utils.IsTerminal(c.stderr) {
		return nil
	}
	text := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ EMOJICONV", utils.StatusMessage),
		utils.DecorateText(msg, utils.DefaultMessage),
	)
	s := utils.NewSpinner(text, time.Millisecond*80, true)
	s.SetWriter(c.stderr)

	return s
}

func version() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// parseFlags parses args and reports whether the command should go on.
// If not, the returned code is the exit status.
func (c *cli) parseFlags(fs *pflag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK, false
		}
		c.errorf("%v", err)
		return exitFailure, false
	}
	return exitOK, true
}
