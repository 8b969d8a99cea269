// ABOUTME: Account administration commands
// ABOUTME: Admin-only CRUD over /auth/users

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/markalston/formationsgest/internal/export"
	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/models"
)

var (
	usersList listFlags
	userFile  string
)

var usersCmd = onRoute(&cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Administer user accounts",
}, gate.RouteUsers)

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		res, err := rt.client.ListUsers(ctx, usersList.options())
		if err != nil {
			return err
		}
		return printList(w, res, &usersList, export.Users)
	}),
}

var usersGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one user account",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		u, err := rt.client.GetUser(ctx, args[0])
		if err != nil {
			return err
		}
		return printRecord(w, u, export.Users([]models.User{*u}))
	}),
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account from a JSON or YAML file",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		u, err := readUser()
		if err != nil {
			return err
		}
		created, err := rt.client.CreateUser(ctx, u)
		if err != nil {
			return err
		}
		return printRecord(w, created, export.Users([]models.User{*created}))
	}),
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update a user account from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		u, err := readUser()
		if err != nil {
			return err
		}
		updated, err := rt.client.UpdateUser(ctx, args[0], u)
		if err != nil {
			return err
		}
		return printRecord(w, updated, export.Users([]models.User{*updated}))
	}),
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		if s := rt.session.Snapshot(); s.User != nil && s.User.ID == args[0] {
			return fmt.Errorf("refusing to delete your own account")
		}
		if err := rt.client.DeleteUser(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(w, "User %s deleted\n", args[0])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd)

	addListFlags(usersListCmd, &usersList)
	for _, c := range []*cobra.Command{usersCreateCmd, usersUpdateCmd} {
		c.Flags().StringVar(&userFile, "file", "", "User fields (JSON or YAML, - for stdin)")
	}
}

// readUser decodes --file and rejects unknown roles before the API sees them
func readUser() (*models.User, error) {
	var u models.User
	if err := readPayload(userFile, &u); err != nil {
		return nil, err
	}
	if u.Role != "" && !u.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q (valid: %v)", u.Role, models.Roles)
	}
	return &u, nil
}
