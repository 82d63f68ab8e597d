package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendwatch/internal/cli"
)

func merchantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merchants",
		Short: "Manage the trusted merchant whitelist",
		Long: `Trusted merchants are exempt from anomaly flagging. Matching is
case-insensitive; adding or removing a merchant twice is harmless.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "trust [name]",
		Short: "Add a merchant to the whitelist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.AddTrustedMerchant(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Trusted %s", args[0])))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "untrust [name]",
		Short: "Remove a merchant from the whitelist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.RemoveTrustedMerchant(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Removed %s from trusted merchants", args[0])))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List trusted merchants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			merchants, err := store.GetTrustedMerchants(cmd.Context())
			if err != nil {
				return err
			}
			if len(merchants) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No trusted merchants yet"))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render("Trusted merchants"))
			for _, name := range merchants {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	})

	return cmd
}
