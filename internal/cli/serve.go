package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/memlayout/pkg/server"
	"github.com/matzehuels/memlayout/pkg/transport/redisbus"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr            string
	redisAddr       string
	analysisChannel string
	graphChannel    string
	layout          layoutFlags
}

// serveCommand creates the serve command. The HTTP API always runs; the
// Redis relay runs next to it when --redis-addr is set, sharing one engine.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: server.DefaultAddr}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over HTTP and, optionally, Redis pub/sub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "HTTP listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "Redis address (host:port); empty disables the relay")
	cmd.Flags().StringVar(&opts.analysisChannel, "analysis-channel", redisbus.DefaultAnalysisChannel, "channel analyzer frames arrive on")
	cmd.Flags().StringVar(&opts.graphChannel, "graph-channel", redisbus.DefaultGraphChannel, "channel graph responses are published on")
	opts.layout.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	pipeOpts, err := c.loadOptions(&opts.layout)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(pipeOpts, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	running := 1
	go func() {
		errCh <- server.New(runner, logger).ListenAndServe(ctx, opts.addr)
	}()

	if opts.redisAddr != "" {
		client, err := redisbus.Dial(ctx, opts.redisAddr)
		if err != nil {
			cancel()
			<-errCh
			return err
		}
		defer client.Close()

		bus := redisbus.New(client, runner, logger, redisbus.Options{
			AnalysisChannel: opts.analysisChannel,
			GraphChannel:    opts.graphChannel,
		})
		running++
		go func() {
			errCh <- bus.Run(ctx)
		}()
	}

	printInfo("Serving on %s", styleAccent.Render(opts.addr))
	if opts.redisAddr != "" {
		printDetail("relaying %s → %s via %s", opts.analysisChannel, opts.graphChannel, opts.redisAddr)
	}

	// The first component to stop takes the other down with it.
	var first error
	for ; running > 0; running-- {
		err := <-errCh
		if first == nil && err != nil && !errors.Is(err, context.Canceled) {
			first = err
		}
		cancel()
	}
	return first
}
