package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/config"
	"github.com/cresol/hub-api/internal/domain/audit"
	"github.com/cresol/hub-api/internal/domain/profile"
	"github.com/cresol/hub-api/internal/domain/user"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/database"
	"github.com/cresol/hub-api/internal/pkg/supabase"
)

// operator is the identity hubctl writes audit rows as.
var operator = middleware.Identity{Email: "hubctl", Role: authz.RoleAdmin}

func newProfileCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <email>",
		Short: "Show the profile and role behind an e-mail",
		Long: `Show the intranet profile of an e-mail address. A user that can sign in
but has no profile gets 403 on every API call.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewPostgres(cfg().DatabaseURL)
			if err != nil {
				return err
			}
			defer database.ClosePostgres(db)

			p, err := profile.NewRepository(db).GetByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(args[0])))
			if err != nil {
				return err
			}
			return printProfile(cmd.OutOrStdout(), args[0], p)
		},
	}
}

func printProfile(out io.Writer, email string, p *profile.Profile) error {
	if p == nil {
		_, err := fmt.Fprintf(out, "no profile for %s: the user cannot use the API until one is created\n", email)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%s\n", p.ID)
	fmt.Fprintf(tw, "email\t%s\n", p.Email)
	fmt.Fprintf(tw, "name\t%s\n", p.FullName)
	fmt.Fprintf(tw, "role\t%s\n", p.Role)
	if !slices.Contains(authz.Roles, p.Role) {
		fmt.Fprintf(tw, "warning\tunknown role, every permission check fails\n")
	}
	fmt.Fprintf(tw, "updated\t%s\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
	return tw.Flush()
}

func newSetRoleCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <user-id> <role>",
		Short: "Change a user's role",
		Long:  "Change a user's role through the same path as the admin API: profile first, then auth metadata.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, role, err := parseSetRoleArgs(args)
			if err != nil {
				return err
			}

			c := cfg()
			db, err := database.NewPostgres(c.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.ClosePostgres(db)

			auth := supabase.NewClient(c.SupabaseURL, c.SupabaseServiceRoleKey, 0)
			svc := user.NewService(profile.NewRepository(db), auth, audit.NewService(audit.NewRepository(db)))

			ctx := middleware.WithIdentity(cmd.Context(), operator)
			p, err := svc.ChangeRole(ctx, operator, userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", p.Email, p.Role)
			return nil
		},
	}
}

func parseSetRoleArgs(args []string) (uuid.UUID, string, error) {
	userID, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid user id %q", args[0])
	}
	role := strings.TrimSpace(args[1])
	if !slices.Contains(authz.Roles, role) {
		return uuid.Nil, "", fmt.Errorf("invalid role %q, expected one of %s", role, strings.Join(authz.Roles, ", "))
	}
	return userID, role, nil
}
