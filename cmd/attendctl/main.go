package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/attendance-console/internal/config"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-console/internal/panel"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-console/internal/workflow"
)

const appVersion = "1.0.0"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	token  string
	policy string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "attendctl",
		Short:         "Check in and out of the attendance system from a terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.Version = appVersion
	cmd.SetVersionTemplate("attendctl v{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "Bearer token (defaults to ATTENDANCE_TOKEN)")
	cmd.PersistentFlags().StringVar(&opts.policy, "precheck-policy", "", "fail-open or fail-closed (defaults to FRAUD_PRECHECK_POLICY)")

	cmd.AddCommand(
		newLoginCmd(opts),
		newStatusCmd(opts),
		newHistoryCmd(opts),
		newActionCmd(opts, attendance.ActionCheckIn),
		newActionCmd(opts, attendance.ActionCheckOut),
	)
	return cmd
}

// clientFor builds a backend client and the settings the commands share.
func clientFor(opts *rootOptions, needToken bool) (*apiclient.Client, *config.Config, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, nil, err
	}

	client := apiclient.NewClient(cfg.Backend)
	if opts.token != "" {
		client = client.WithToken(opts.token)
	} else if needToken && cfg.Backend.Token == "" {
		return nil, nil, fmt.Errorf("no token: run `attendctl login` and export ATTENDANCE_TOKEN, or pass --token")
	}
	return client, cfg, nil
}

func newWorkflow(opts *rootOptions, cfg *config.Config, client *apiclient.Client, notifier workflow.Notifier) (*workflow.Workflow, error) {
	raw := opts.policy
	if raw == "" {
		raw = cfg.Fraud.PrecheckPolicy
	}
	policy, err := workflow.ParsePolicy(raw)
	if err != nil {
		return nil, err
	}
	return workflow.New(client, workflow.Options{
		UserID:   "cli",
		Policy:   policy,
		Notifier: notifier,
	}), nil
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var loginID, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := clientFor(opts, false)
			if err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if strings.TrimSpace(loginID) == "" {
				if loginID, err = prompt(in, cmd.OutOrStdout(), "Email or employee code: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(in, cmd.OutOrStdout(), "Password: "); err != nil {
					return err
				}
			}

			req := auth.LoginRequest{LoginID: strings.TrimSpace(loginID), Password: password}
			if err := req.Validate(); err != nil {
				return err
			}
			resp, err := client.Login(cmd.Context(), req)
			if err != nil {
				return userError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", resp.User.Name, resp.User.Role)
			fmt.Fprintf(cmd.OutOrStdout(), "export ATTENDANCE_TOKEN=%s\n", resp.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&loginID, "id", "", "Email or employee code")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when empty)")
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's attendance and recent history",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := clientFor(opts, true)
			if err != nil {
				return err
			}
			flow, err := newWorkflow(opts, cfg, client, nil)
			if err != nil {
				return err
			}

			if err := flow.Load(cmd.Context()); err != nil {
				return userError(err)
			}
			history, err := client.History(cmd.Context(), 10)
			if err != nil {
				return userError(err)
			}

			printView(cmd.OutOrStdout(), panel.Build(flow.Snapshot(), history, cfg.Location()))
			return nil
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent attendance records",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := attendance.HistoryFilter{Limit: limit}
			if err := filter.Validate(); err != nil {
				return err
			}
			client, cfg, err := clientFor(opts, true)
			if err != nil {
				return err
			}

			records, err := client.History(cmd.Context(), filter.Limit)
			if err != nil {
				return userError(err)
			}
			printHistory(cmd.OutOrStdout(), records, cfg.Location())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of records")
	return cmd
}

func newActionCmd(opts *rootOptions, action attendance.Action) *cobra.Command {
	var assumeYes bool
	var reason string

	cmd := &cobra.Command{
		Use:   string(action),
		Short: "Run the guarded " + string(action),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := clientFor(opts, true)
			if err != nil {
				return err
			}
			flow, err := newWorkflow(opts, cfg, client, terminalNotifier(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			if err := flow.Load(cmd.Context()); err != nil {
				return userError(err)
			}

			session := &attemptSession{
				flow:      flow,
				in:        bufio.NewReader(cmd.InOrStdin()),
				out:       cmd.OutOrStdout(),
				assumeYes: assumeYes,
				reason:    reason,
			}
			return session.run(cmd.Context(), action)
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&reason, "reason", "", "Justification used if the attempt is flagged")
	return cmd
}
