// Command jackroute wires a JACK client's stereo ports to the system's
// physical audio ports, using the same routing as the activation shim.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/jackroute"
	"github.com/opd-ai/jackroute/catalog"
	"github.com/opd-ai/jackroute/factory"
	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/names"
	"github.com/opd-ai/jackroute/simulation"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errMissingClient = errors.New("no client name: pass --client or set client in the config file")

type rootFlags struct {
	configPath string
	client     string
	snapshot   string
	live       bool
	logLevel   string
	logFormat  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var cfg *Config

	root := &cobra.Command{
		Use:   "jackroute",
		Short: "Connect a JACK client to the physical audio interface",
		Long: `jackroute connects a client's two input and two output ports to the first
two physical capture and playback ports, or to the ports named by the
RS_PHYS_* and RS_GAME_* environment variables.

A diagnostic report listing every candidate port is written after each run.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := LoadConfig(flags.configPath)
			if err != nil {
				return err
			}
			if flags.client != "" {
				loaded.Client = flags.client
			}
			if flags.logLevel != "" {
				loaded.LogLevel = flags.logLevel
			}
			if flags.logFormat != "" {
				loaded.LogFormat = flags.logFormat
			}
			cfg = loaded
			return configureLogging(cfg.LogLevel, cfg.LogFormat)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/jackroute/config.toml)")
	pf.StringVarP(&flags.client, "client", "c", "", "client whose ports are routed")
	pf.StringVar(&flags.snapshot, "snapshot", "", "use a YAML graph snapshot instead of the live server")
	pf.BoolVar(&flags.live, "live", false, "use the JACK server even if "+factory.EnvUseSimulation+" is set")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format (text, json)")

	root.AddCommand(
		newRouteCmd(flags, &cfg),
		newPortsCmd(flags, &cfg),
		newSnapshotCmd(flags, &cfg),
		newVersionCmd(),
	)
	return root
}

// dryRunner is implemented by graphs that do not touch a live server.
type dryRunner interface {
	IsSimulation() bool
}

func buildGraph(flags *rootFlags, cfg *Config) (interfaces.IGraphServer, error) {
	f := factory.NewGraphFactory()
	switch {
	case flags.snapshot != "":
		f.SwitchToSimulation(flags.snapshot)
	case flags.live:
		f.SwitchToReal()
	}
	if err := cfg.applyTo(f); err != nil {
		return nil, err
	}

	if f.IsUsingSimulation() && f.GetCurrentConfig().SnapshotPath == "" {
		logrus.WithFields(logrus.Fields{
			"function": "buildGraph",
			"env_var":  factory.EnvUseSimulation,
		}).Warn("Simulation selected without a snapshot, the graph is empty; pass --live to use JACK")
	}
	return f.CreateGraph(cfg.Client)
}

func newRouteCmd(flags *rootFlags, cfg **Config) *cobra.Command {
	var (
		reportPath string
		readyPort  string
		maxWait    int
		poll       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Wait for the client and connect its ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			if c.Client == "" && flags.snapshot == "" {
				return errMissingClient
			}
			graph, err := buildGraph(flags, c)
			if err != nil {
				return err
			}

			opts := jackroute.NewOptions()
			opts.ReportPath = c.ReportPath
			opts.ReadyPort = c.ReadyPort
			opts.MaxWaitAttempts = c.MaxWaitAttempts
			if opts.PollInterval, err = c.Poll(); err != nil {
				return err
			}
			if cmd.Flags().Changed("report") {
				opts.ReportPath = reportPath
			}
			if cmd.Flags().Changed("ready-port") {
				opts.ReadyPort = readyPort
			}
			if cmd.Flags().Changed("max-wait") {
				opts.MaxWaitAttempts = maxWait
			}
			if cmd.Flags().Changed("poll") {
				if poll <= 0 {
					return fmt.Errorf("--poll must be positive, got %s", poll)
				}
				opts.PollInterval = poll
			}

			// the client activated on its own; only routing runs here
			noop := interfaces.ActivatorFunc(func(context.Context) error { return nil })
			m := jackroute.New(graph, noop, opts)
			if err := m.Activate(cmd.Context()); err != nil {
				return err
			}

			dr, ok := graph.(dryRunner)
			printSummary(cmd.OutOrStdout(), m.LastResult(), opts.ReportPath, ok && dr.IsSimulation())
			return nil
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "report file")
	cmd.Flags().StringVar(&readyPort, "ready-port", "", "port to wait for (default <client>:in_1)")
	cmd.Flags().IntVar(&maxWait, "max-wait", 0, "give up waiting after this many lookups (0 waits forever)")
	cmd.Flags().DurationVar(&poll, "poll", 0, "interval between readiness lookups (default 250ms)")
	return cmd
}

func printSummary(w io.Writer, res *jackroute.Result, reportPath string, dryRun bool) {
	if res == nil {
		return
	}
	if dryRun {
		fmt.Fprintln(w, "Dry run against a simulated graph, no JACK server was touched")
	}
	for _, o := range res.Outcomes {
		fmt.Fprintln(w, o.Line())
	}
	fmt.Fprintf(w, "%d of %d connections made; report written to %s\n", res.Connected(), len(res.Outcomes), reportPath)
}

func newPortsCmd(flags *rootFlags, cfg **Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List physical ports and the client's ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			graph, err := buildGraph(flags, c)
			if err != nil {
				return err
			}

			client := graph.ClientName()
			cat := catalog.New(graph, names.Detect(client))
			snap, err := cat.Take(cmd.Context(), client)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printPorts(w, "Physical input ports", snap.PhysicalInputs)
			printPorts(w, "Physical output ports", snap.PhysicalOutputs)
			if client != "" {
				printPorts(w, "Client input ports", snap.AppInputs)
				printPorts(w, "Client output ports", snap.AppOutputs)
			}
			return nil
		},
	}
}

func printPorts(w io.Writer, title string, ports []catalog.Port) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(ports))
	for _, p := range ports {
		if p.Raw != p.Name {
			fmt.Fprintf(w, "  %s\t(%s)\n", p.Name, p.Raw)
			continue
		}
		fmt.Fprintf(w, "  %s\n", p.Name)
	}
}

func newSnapshotCmd(flags *rootFlags, cfg **Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save the current graph as YAML for later dry runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			graph, err := buildGraph(flags, c)
			if err != nil {
				return err
			}
			ports, err := graph.Ports(cmd.Context())
			if err != nil {
				return err
			}

			snap := simulation.Capture(graph.ClientName(), ports)
			snap.NormalizedLookup = names.HasTransportPrefix(graph.ClientName())
			data, err := snap.Marshal()
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jackroute %s\n", jackroute.Version)
		},
	}
}
