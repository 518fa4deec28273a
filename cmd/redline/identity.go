package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/redline/pkg/core"
)

var (
	idFirst   string
	idLast    string
	idEmail   string
	idCompany string
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Show or set who is reviewing",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		session := openSession(ctx)

		if idFirst != "" || idLast != "" || idEmail != "" {
			who := core.Identity{FirstName: idFirst, LastName: idLast, Email: idEmail, Company: idCompany}
			if err := session.SetIdentity(ctx, who); err != nil {
				fatal("Failed to set identity", err)
			}
			fmt.Println("Reviewing as", who.DisplayName())
			return
		}

		who, ok := session.Identity()
		if !ok {
			fmt.Println("No identity set. Use --first, --last and --email.")
			return
		}
		fmt.Printf("%s <%s>\n", who.DisplayName(), who.Email)
	},
}

func init() {
	rootCmd.AddCommand(identityCmd)
	identityCmd.Flags().StringVar(&idFirst, "first", "", "First name")
	identityCmd.Flags().StringVar(&idLast, "last", "", "Last name")
	identityCmd.Flags().StringVar(&idEmail, "email", "", "Email address")
	identityCmd.Flags().StringVar(&idCompany, "company", "", "Company (optional)")
}
