package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/client"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newReservationCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reservation",
		Aliases: []string{"res"},
		Short:   "Create and manage reservations through the API",
	}
	newClient := func() *client.Client { return client.New(v.GetString("url")) }

	var propertyID, tenantID, start, end string
	create := &cobra.Command{
		Use:   "create",
		Short: "Book a property",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.CreateReservationRequest{PropertyID: propertyID, TenantID: tenantID}
			var err error
			if req.StartDate, err = parseDateFlag("start", start); err != nil {
				return err
			}
			if req.EndDate, err = parseDateFlag("end", end); err != nil {
				return err
			}

			res, err := newClient().CreateReservation(cmd.Context(), req)
			if err != nil {
				return err
			}
			cmd.Printf("Reservation %s created (%s, %s to %s)\n",
				res.ID, res.Status, res.Interval.Start, res.Interval.End)
			return nil
		},
	}
	create.Flags().StringVar(&propertyID, "property", "", "property id")
	create.Flags().StringVar(&tenantID, "tenant", "", "tenant user id")
	create.Flags().StringVar(&start, "start", "", "first night, YYYY-MM-DD")
	create.Flags().StringVar(&end, "end", "", "check-out date, YYYY-MM-DD")
	for _, f := range []string{"property", "tenant", "start", "end"} {
		_ = create.MarkFlagRequired(f)
	}

	status := &cobra.Command{
		Use:   "status [reservation_id] [status]",
		Short: "Move a reservation to CONFIRMED, REJECTED, FINISHED or CANCELLED",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := model.ParseStatus(args[1])
			if err != nil {
				return err
			}
			msg, err := newClient().TransitionStatus(cmd.Context(), args[0], next)
			if err != nil {
				return err
			}
			cmd.Println(msg)
			return nil
		},
	}

	var listTenant, listStatus string
	list := &cobra.Command{
		Use:   "list",
		Short: "List a tenant's reservations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var st model.Status
			if listStatus != "" {
				var err error
				if st, err = model.ParseStatus(listStatus); err != nil {
					return err
				}
			}
			items, err := newClient().ListForTenant(cmd.Context(), listTenant, st)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				cmd.Println("No reservations found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROPERTY\tSTART\tEND\tSTATUS")
			for _, r := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.PropertyID, r.StartDate, r.EndDate, r.Status)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&listTenant, "tenant", "", "tenant user id")
	list.Flags().StringVar(&listStatus, "status", "", "only reservations in this status")
	_ = list.MarkFlagRequired("tenant")

	var deleteTenant string
	del := &cobra.Command{
		Use:   "delete [reservation_id]",
		Short: "Delete a pending reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := newClient().DeleteReservation(cmd.Context(), args[0], deleteTenant)
			if err != nil {
				return err
			}
			cmd.Println(msg)
			return nil
		},
	}
	del.Flags().StringVar(&deleteTenant, "tenant", "", "tenant user id")
	_ = del.MarkFlagRequired("tenant")

	cmd.AddCommand(create, status, list, del)
	return cmd
}

func parseDateFlag(name, value string) (*model.Date, error) {
	d, err := model.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}
