package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cfhosts/internal/config"
	"cfhosts/internal/dnscache"
	"cfhosts/internal/hosts"
	"cfhosts/internal/monitor"
	"cfhosts/internal/notify"
	"cfhosts/internal/privilege"
	"cfhosts/internal/reconciler"
	"cfhosts/internal/speedtest"
	"cfhosts/pkg/utils"
)

// BuildInfo is stamped in at link time
type BuildInfo struct {
	Repo    string
	Version string
	Time    string
}

// Runner encapsulates CLI execution.
type Runner struct {
	Config *config.Config
	Build  BuildInfo

	// Escalator and Flusher are detected from the environment when nil
	Escalator privilege.Escalator
	Flusher   dnscache.Flusher

	Log logrus.FieldLogger
	Out io.Writer
	Err io.Writer

	hostnames []string
}

// Execute builds the command tree, runs it with args and returns the
// process exit code
func (r *Runner) Execute(args []string) int {
	r.defaults()

	exit := 0
	rootCmd := r.newRootCmd()
	rootCmd.AddCommand(
		r.newOptimizeCmd(),
		r.newRunCmd(),
		r.newResultCmd(),
		r.newApplyCmd(),
		r.newRemoveCmd(),
		r.newStatusCmd(),
		r.newWatchCmd(),
		r.newVersionCmd(),
		r.newHelperCmd(&exit),
	)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(r.Out)
	rootCmd.SetErr(r.Err)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(r.Err, "Error: %s\n", r.describe(err))
		return 1
	}
	return exit
}

func (r *Runner) defaults() {
	if r.Config == nil {
		r.Config = config.DefaultConfig()
	}
	if r.Log == nil {
		r.Log = logrus.StandardLogger()
	}
	if r.Out == nil {
		r.Out = os.Stdout
	}
	if r.Err == nil {
		r.Err = os.Stderr
	}
}

func (r *Runner) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cfhosts",
		Short: "Pin hostnames to the fastest Cloudflare IP through the hosts file",
		Long: fmt.Sprintf(`cfhosts %s

Runs CloudflareSpeedTest, picks the fastest edge IP from its result file
and writes it into %s for the configured hostnames.
Writing the hosts file requests elevated permissions when needed.`, r.Build.Version, r.targetPath()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVarP(&r.hostnames, "hostname", "n", nil, "Hostnames to manage (default from config)")
	return cmd
}

func (r *Runner) newOptimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Run the speed test and apply the fastest IP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.speedTest().Run(cmd.Context()); err != nil {
				return err
			}
			if err := r.printResult(); err != nil {
				return err
			}
			return r.apply(cmd.Context(), "")
		},
	}
}

func (r *Runner) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run CloudflareSpeedTest only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.speedTest().Run(cmd.Context())
		},
	}
}

func (r *Runner) newResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result",
		Short: "Show the last speed test result",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return r.printResult()
		},
	}
}

func (r *Runner) newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply [ip]",
		Short: "Point hostnames at ip, or at the fastest IP of the last result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip := ""
			if len(args) == 1 {
				ip = args[0]
			}
			return r.apply(cmd.Context(), ip)
		},
	}
}

func (r *Runner) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the hosts entries for the hostnames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := r.names()
			if err := r.reconciler().RemoveOverride(cmd.Context(), names); err != nil {
				return err
			}
			fmt.Fprintf(r.Out, "✓ Removed: %s\n", strings.Join(names, " "))
			return nil
		},
	}
}

func (r *Runner) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current hosts binding of each hostname",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			bindings, err := r.reconciler().Status(r.names())
			if err != nil {
				return err
			}
			fmt.Fprintf(r.Out, "Hosts File: %s\n", r.targetPath())
			for _, b := range bindings {
				if b.Found {
					fmt.Fprintf(r.Out, "  %-30s -> %s\n", b.Name, b.Address)
				} else {
					fmt.Fprintf(r.Out, "  %-30s -> (not set)\n", b.Name)
				}
			}
			return nil
		},
	}
}

func (r *Runner) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [ip]",
		Short: "Keep hostnames pinned to ip while running",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip, err := r.resolveIP(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mon := monitor.New(r.targetPath(), ip, r.names(), r.reconciler(), r.sink())
			return mon.Run(ctx)
		},
	}
}

func (r *Runner) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(r.Out, "%s: Build %s, Time %s\n", r.Build.Repo, r.Build.Version, r.Build.Time)
		},
	}
}

// newHelperCmd is the entry point re-invoked with elevated rights. Its
// exit code is the contract with the unprivileged parent.
func (r *Runner) newHelperCmd(exit *int) *cobra.Command {
	var src, dst string

	cmd := &cobra.Command{
		Use:    "helper <action>",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			*exit = privilege.HelperMain(args[0], src, dst, r.Err)
		},
	}
	cmd.Flags().StringVar(&src, "src", "", "Staged file")
	cmd.Flags().StringVar(&dst, "dst", "", "Destination file")
	return cmd
}

func (r *Runner) apply(ctx context.Context, ip string) error {
	ip, err := r.resolveIP(optional(ip))
	if err != nil {
		return err
	}

	names := r.names()
	if err := r.reconciler().ApplyOverride(ctx, ip, names); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "✓ Applied: %s -> %s\n", strings.Join(names, " "), ip)
	return nil
}

func (r *Runner) resolveIP(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		if !utils.IsAddr(args[0]) {
			return "", fmt.Errorf("invalid IP address: %s", args[0])
		}
		return args[0], nil
	}
	return speedtest.FastestIP(r.Config.ResultPath())
}

func (r *Runner) printResult() error {
	lines, err := speedtest.ReadResult(r.Config.ResultPath())
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(r.Out, l)
	}
	return nil
}

func (r *Runner) names() []string {
	if len(r.hostnames) > 0 {
		return r.hostnames
	}
	if len(r.Config.Hostnames) > 0 {
		return r.Config.Hostnames
	}
	return []string{config.DefaultHostname}
}

func (r *Runner) targetPath() string {
	if r.Config.HostsFile != "" {
		return r.Config.HostsFile
	}
	return hosts.TargetPath()
}

func (r *Runner) sink() notify.Sink {
	return notify.NewLogSink(r.Log)
}

func (r *Runner) speedTest() *speedtest.Runner {
	return speedtest.NewRunner(r.Config.SpeedTestDir, r.Config.SpeedTestBin, r.Config.SpeedTestArgs, r.sink())
}

func (r *Runner) reconciler() *reconciler.Reconciler {
	target := r.targetPath()

	escalator := r.Escalator
	if escalator == nil {
		escalator = privilege.Detect(target)
		r.Escalator = escalator
	}
	r.Log.WithField("escalator", escalator.Name()).Debug("Selected hosts writer")

	flusher := r.Flusher
	if flusher == nil {
		if r.Config.FlushDNS {
			flusher = dnscache.System{}
		} else {
			flusher = dnscache.Nop{}
		}
	}

	return reconciler.New(target, privilege.NewWriter(target, escalator), flusher, r.sink())
}

// describe turns an error into an operator hint
func (r *Runner) describe(err error) string {
	var writeErr *privilege.HostsWriteError

	switch {
	case errors.Is(err, speedtest.ErrToolMissing):
		return fmt.Sprintf("%v: install it into %s", err, r.Config.SpeedTestDir)
	case errors.Is(err, speedtest.ErrResultMissing):
		return fmt.Sprintf("%v\nRun \"cfhosts run\" to produce one", err)
	case errors.As(err, &writeErr):
		return fmt.Sprintf("%v\nRe-run with elevated privileges (sudo or Administrator)", err)
	}
	return err.Error()
}

func optional(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
