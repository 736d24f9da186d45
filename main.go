package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/briangreenhill/trainingagent/internal/agent"
	"github.com/briangreenhill/trainingagent/internal/app"
	"github.com/briangreenhill/trainingagent/internal/config"
	"github.com/briangreenhill/trainingagent/internal/logging"
	"github.com/briangreenhill/trainingagent/internal/prompt"
)

const version = "v0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trainingagent",
		Short:         "Recovery score and training assistant for intervals.icu",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newStatusCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newLearningsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// loadAgent builds an agent from the environment. CLI logs go to stderr.
func loadAgent(ctx context.Context, stderr io.Writer) (*agent.Agent, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, logFile := logging.New(logging.Params{Out: stderr, Level: cfg.Log.Level, JSON: cfg.Log.JSON, File: cfg.Log.File})

	a, closeStore, err := app.Build(ctx, cfg, logger)
	if err != nil {
		_ = logFile.Close()
		return nil, nil, err
	}
	return a, func() error {
		_ = logFile.Close()
		return closeStore()
	}, nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Connect and print today's recovery score and recommendation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeFn, err := loadAgent(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn() //nolint:errcheck

			if err := a.Connect(cmd.Context()); err != nil {
				if msg := a.State().Error; msg != "" {
					return fmt.Errorf("%s", msg)
				}
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), renderStatus(a.State()))
			return err
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Connect, then ask the assistant one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := loadAgent(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn() //nolint:errcheck

			// chat still works on an empty snapshot
			if err := a.Connect(cmd.Context()); err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning:", a.State().Error)
			}

			reply, err := a.SendChat(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return err
		},
	}
}

func newLearningsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learnings",
		Short: "Print the stored learnings document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeFn, err := loadAgent(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn() //nolint:errcheck

			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.Learnings(cmd.Context()).Indent())
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "trainingagent", version)
		},
	}
}

func renderStatus(st agent.State) string {
	var b strings.Builder
	if st.Profile != nil && st.Profile.Name != "" {
		fmt.Fprintf(&b, "Athlete: %s\n", st.Profile.Name)
	}
	if st.Assessment == nil {
		fmt.Fprintf(&b, "Recovery: %s\n", prompt.NotAvailable)
	} else {
		fmt.Fprintf(&b, "Recovery: %.1f/10 (HRV %+.1f%%, resting HR %+.1f%%)\n",
			st.Assessment.Score, st.Assessment.HRVDeltaPct, st.Assessment.RHRDeltaPct)
	}
	fmt.Fprintf(&b, "Status: %s, %s\n", st.Recommendation.Status, st.Recommendation.Text)
	if st.Recommendation.Detail != "" {
		fmt.Fprintf(&b, "%s\n", st.Recommendation.Detail)
	}
	fmt.Fprintf(&b, "Activities (30 days): %d\n", len(st.Activities))
	return b.String()
}
