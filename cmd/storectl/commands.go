package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/your-org/solar-storefront/internal/domain/order"
	"github.com/your-org/solar-storefront/internal/domain/store"
	"github.com/your-org/solar-storefront/internal/pkg/identity"
)

type storeOpener func(ctx context.Context) (*store.Store, func(), error)

func newRootCommand(open storeOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Administer the solar storefront local state",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newDeriveIDCommand(),
		newBanCommand(open),
		newUnbanCommand(open),
		newSessionsCommand(open),
		newOrdersCommand(open),
		newSetStatusCommand(open),
	)
	return root
}

// withStore opens the store for the duration of fn
func withStore(cmd *cobra.Command, open storeOpener, fn func(ctx context.Context, st *store.Store) error) error {
	ctx := cmd.Context()
	st, closeFn, err := open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer closeFn()
	return fn(ctx, st)
}

func newDeriveIDCommand() *cobra.Command {
	var subject bool

	cmd := &cobra.Command{
		Use:   "derive-id <email|subject>",
		Short: "Print the user id derived from an email or a federated subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := identity.FromEmail(args[0])
			if subject {
				id = identity.FromSubject(args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&subject, "subject", false, "treat the argument as a federated subject id instead of an email")
	return cmd
}

func newBanCommand(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "ban <ip>",
		Short: "Block an IP address from the storefront",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, func(ctx context.Context, st *store.Store) error {
				if err := st.Ban(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "banned %s\n", args[0])
				return nil
			})
		},
	}
}

func newUnbanCommand(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "unban <ip>",
		Short: "Lift the ban on an IP address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, func(ctx context.Context, st *store.Store) error {
				if err := st.Unban(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "unbanned %s\n", args[0])
				return nil
			})
		},
	}
}

func newSessionsCommand(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List live visitor sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, func(ctx context.Context, st *store.Store) error {
				sessions, err := st.ListSessions(ctx)
				if err != nil {
					return err
				}
				banned, err := st.ListBanned(ctx)
				if err != nil {
					return err
				}
				writeSessions(cmd.OutOrStdout(), sessions, banned)
				return nil
			})
		},
	}
}

func newOrdersCommand(open storeOpener) *cobra.Command {
	var status, currency string

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter order.Status
			if status != "" {
				parsed, ok := order.ParseStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q", status)
				}
				filter = parsed
			}

			return withStore(cmd, open, func(ctx context.Context, st *store.Store) error {
				orders, err := st.ListOrders(ctx)
				if err != nil {
					return err
				}
				writeOrders(cmd.OutOrStdout(), orders, filter, currency)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only list orders with this status")
	cmd.Flags().StringVar(&currency, "currency", "USD", "currency code used to print totals")
	return cmd
}

func newSetStatusCommand(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <order-id> <status>",
		Short: "Change the status of an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := order.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q", args[1])
			}

			return withStore(cmd, open, func(ctx context.Context, st *store.Store) error {
				o, err := st.UpdateOrderStatus(ctx, args[0], status)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", o.ID, o.Status)
				return nil
			})
		},
	}
}

func writeSessions(out io.Writer, sessions []store.Session, banned []string) {
	bannedSet := make(map[string]bool, len(banned))
	for _, ip := range banned {
		bannedSet[ip] = true
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "IP\tVISITOR\tDEVICE\tLAST SEEN\tBANNED")
	for _, s := range sessions {
		visitor := s.Email
		if visitor == "" {
			visitor = "guest"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", s.IP, visitor, s.Device, humanize.Time(s.LastSeen), bannedSet[s.IP])
	}
	w.Flush()
}

func writeOrders(out io.Writer, orders []order.Order, filter order.Status, currency string) {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCUSTOMER\tITEMS\tTOTAL\tPAYMENT\tSTATUS")
	for _, o := range orders {
		if filter != "" && o.Status != filter {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			o.ID,
			o.Date.Format("2006-01-02 15:04"),
			strings.TrimSpace(o.Shipping.FullName),
			o.ItemCount(),
			order.FormatAmount(o.Total, currency),
			o.PaymentMethod,
			o.Status,
		)
	}
	w.Flush()
}
