package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/repositories"
)

type migrator interface {
	Migrate(ctx context.Context, command string) error
}

type adminManager interface {
	GrantByEmail(ctx context.Context, email string, grantedBy *string) (*models.Account, error)
	RevokeByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Admin, error)
}

type moderator interface {
	ListPending(ctx context.Context, limit int) ([]*models.PendingMember, error)
	Decide(ctx context.Context, profileID string, decision models.Moderation, actorID *string, source, ip string) (*repositories.ModerationResult, error)
}

type historyReader interface {
	ListByProfile(ctx context.Context, profileID string, limit int) ([]*models.ModerationEvent, error)
}

// app is what a command runs against. Built lazily so --help never needs a
// database.
type app struct {
	migrator   migrator
	admins     adminManager
	moderation moderator
	history    historyReader
	logger     *slog.Logger
	close      func()
}

type rootOptions struct {
	verbose bool
	noEmail bool
}

type appFactory func(ctx context.Context, opts *rootOptions) (*app, error)

func newRootCmd(factory appFactory) *cobra.Command {
	opts := &rootOptions{}

	// withApp builds the app for one command run and closes it afterwards.
	withApp := func(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := factory(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if a.close != nil {
				defer a.close()
			}
			return run(cmd, args, a)
		}
	}

	root := &cobra.Command{
		Use:           "alumnictl",
		Short:         "Operate the alumni network service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newMigrateCmd(withApp),
		newAdminCmd(withApp),
		newMembersCmd(withApp, opts),
	)
	return root
}

type runner func(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error

func newMigrateCmd(withApp runner) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down|status|version",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.migrator.Migrate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", args[0])
			return nil
		}),
	}
}

func newAdminCmd(withApp runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the moderation allowlist",
	}

	grant := &cobra.Command{
		Use:   "grant <email>",
		Short: "Allow an account to moderate members",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			account, err := a.admins.GrantByEmail(cmd.Context(), args[0], nil)
			if err != nil {
				return accountError(args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted admin to %s (%s)\n", account.Email, account.ID)
			return nil
		}),
	}

	revoke := &cobra.Command{
		Use:   "revoke <email>",
		Short: "Remove an account from the allowlist",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			account, err := a.admins.RevokeByEmail(cmd.Context(), args[0])
			if err != nil {
				return accountError(args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked admin from %s (%s)\n", account.Email, account.ID)
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List allowlisted accounts",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			admins, err := a.admins.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ad := range admins {
				fmt.Fprintf(out, "%s\t%s\n", ad.UserID, ad.GrantedAt.Format("2006-01-02"))
			}
			if len(admins) == 0 {
				fmt.Fprintln(out, "no admins")
			}
			return nil
		}),
	}

	cmd.AddCommand(grant, revoke, list)
	return cmd
}

func newMembersCmd(withApp runner, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Review the moderation queue",
	}
	cmd.PersistentFlags().BoolVar(&opts.noEmail, "no-email", false, "Log decision emails instead of sending them")

	var limit int
	pending := &cobra.Command{
		Use:   "pending",
		Short: "List onboarded members awaiting review, oldest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			members, err := a.moderation.ListPending(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range members {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", m.ID, m.Email, orDash(m.FullName), m.CreatedAt.Format("2006-01-02"))
			}
			fmt.Fprintf(out, "%d pending\n", len(members))
			return nil
		}),
	}
	pending.Flags().IntVar(&limit, "limit", 50, "Maximum rows to show")

	decide := func(use string, decision models.Moderation) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <member-id>",
			Short: strings.ToUpper(use[:1]) + use[1:] + " a member",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				if _, err := uuid.Parse(args[0]); err != nil {
					return fmt.Errorf("%w: %q is not a member id", errUsage, args[0])
				}
				result, err := a.moderation.Decide(cmd.Context(), args[0], decision, nil, models.ModerationSourceCLI, "")
				if err != nil {
					if errors.Is(err, models.ErrNotFound) {
						return fmt.Errorf("no member with id %s", args[0])
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", result.ProfileID, result.Decision)
				return nil
			}),
		}
	}

	history := &cobra.Command{
		Use:   "history <member-id>",
		Short: "Show the moderation trail of a member",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			events, err := a.history.ListByProfile(cmd.Context(), args[0], 50)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ev := range events {
				actor := "-"
				if ev.ActorID != nil {
					actor = ev.ActorID.String()
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", ev.CreatedAt.Format("2006-01-02 15:04"), ev.Decision, ev.Source, actor)
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "no decisions recorded")
			}
			return nil
		}),
	}

	cmd.AddCommand(pending, decide("approve", models.ModerationApproved), decide("reject", models.ModerationRejected), history)
	return cmd
}

func accountError(email string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("no matching account for %s", email)
	default:
		return err
	}
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
