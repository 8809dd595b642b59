package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/compose"
	"github.com/favbox/promptflow/config"
	"github.com/favbox/promptflow/logs"
	cbutils "github.com/favbox/promptflow/utils/callbacks"
	"github.com/favbox/promptflow/utils/tracer"
)

type options struct {
	verbose bool
	args    string
	timeout time.Duration
	trace   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "flowctl",
		Short:         "Validate and run YAML compositions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every stage")

	validateCmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a composition and print its resolution order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(args[0])
			if err != nil {
				return err
			}
			if err = c.Validate(); err != nil {
				return err
			}
			order, err := c.ResolutionOrder()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n%s\n", c.Name(), strings.Join(order, " -> "))
			return nil
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "List the nodes of a composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "composition %s\n", c.Name())
			for _, n := range c.Nodes() {
				fmt.Fprintf(out, "  %-12s %s\n", n.Type, n.ID)
			}
			return nil
		},
	}

	runCmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a composition built from request, mapper, joiner, loop and output nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0])
		},
	}
	runCmd.Flags().StringVar(&opts.args, "args", "{}", "Call arguments as a JSON object")
	runCmd.Flags().DurationVar(&opts.timeout, "timeout", time.Minute, "Call timeout")
	runCmd.Flags().BoolVar(&opts.trace, "trace", false, "Print the trace tree after the call")

	root.AddCommand(validateCmd, inspectCmd, runCmd)
	return root
}

func load(path string) (*compose.Composition, error) {
	spec, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return spec.Build(&config.Registry{Stub: true})
}

func run(cmd *cobra.Command, opts *options, path string) error {
	c, err := load(path)
	if err != nil {
		return err
	}

	var callArgs map[string]any
	if err = sonic.UnmarshalString(opts.args, &callArgs); err != nil {
		return fmt.Errorf("--args must be a JSON object: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	var handlers []callbacks.Handler
	if opts.verbose {
		logger, err := logs.New(true)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		logs.SetLogger(logger)
		handlers = append(handlers, cbutils.NewLoggerHandler(logger))
	}

	var record *tracer.Record
	if opts.trace {
		handlers = append(handlers, tracer.New(tracer.SinkFunc(func(_ context.Context, r *tracer.Record, _ string) error {
			record = r
			return nil
		})))
	}
	if len(handlers) > 0 {
		ctx = callbacks.InitCallbacks(ctx, nil, handlers...)
	}

	outcome := c.Execute(ctx, callArgs)
	js, err := sonic.ConfigStd.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, string(js))

	if record != nil {
		printFrame(cmd, record.Root, 0)
	}
	if len(outcome.Errors) > 0 {
		return fmt.Errorf("composition %s failed", c.Name())
	}
	return nil
}

func printFrame(cmd *cobra.Command, f *tracer.Frame, depth int) {
	label := f.Name
	if label == "" {
		label = f.Type
	}
	line := fmt.Sprintf("%s%s %s %s", strings.Repeat("  ", depth), f.Component, label, f.Duration)
	if f.Error != "" {
		line += " error: " + f.Error
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	for _, c := range f.Children {
		printFrame(cmd, c, depth+1)
	}
}
