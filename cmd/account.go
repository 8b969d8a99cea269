// ABOUTME: Account commands: profile update and the password flows
// ABOUTME: forgot-password and reset-password work without a session

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/markalston/formationsgest/internal/export"
	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/models"
)

var (
	accountFile        string
	forgotEmail        string
	resetToken         string
	resetPasswordStdin bool
)

var accountCmd = onRoute(&cobra.Command{
	Use:   "account",
	Short: "Manage your own account",
}, gate.RouteAccount)

var accountUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile from a JSON or YAML file",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var update models.ProfileUpdate
		if err := readPayload(accountFile, &update); err != nil {
			return err
		}
		user, err := rt.client.UpdateMe(ctx, &update)
		if err != nil {
			return err
		}
		if err := rt.session.RefreshUser(ctx); err != nil {
			return err
		}
		return printRecord(w, user, export.Table{
			Headers: []string{"ID", "Nom", "Prénom", "Email", "Rôle"},
			Rows:    [][]string{{user.ID, user.Nom, user.Prenom, user.Email, user.Role.String()}},
		})
	}),
}

var accountPasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	Long:  `Change your password. Prompts for the current and new password unless --file is given.`,
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var change models.PasswordChange
		if accountFile != "" {
			if err := readPayload(accountFile, &change); err != nil {
				return err
			}
		} else {
			var err error
			if change, err = promptPasswordChange(); err != nil {
				return err
			}
		}
		if err := rt.client.ChangePassword(ctx, &change); err != nil {
			return err
		}
		fmt.Fprintln(w, "Password changed")
		return nil
	}),
}

var forgotPasswordCmd = onRoute(&cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset email",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		if forgotEmail == "" {
			return errors.New("--email is required")
		}
		if err := rt.client.ForgotPassword(ctx, forgotEmail); err != nil {
			return err
		}
		fmt.Fprintln(w, "If the account exists, a reset link has been sent")
		return nil
	}),
}, gate.RouteForgotPassword)

var resetPasswordCmd = onRoute(&cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with the token from the reset email",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		if resetToken == "" {
			return errors.New("--token is required")
		}
		var password string
		var err error
		if resetPasswordStdin {
			password, err = readPasswordLine(os.Stdin)
		} else {
			password, err = promptPassword("Nouveau mot de passe")
		}
		if err != nil {
			return err
		}
		if err := rt.client.ResetPassword(ctx, &models.PasswordReset{Token: resetToken, Password: password}); err != nil {
			return err
		}
		fmt.Fprintln(w, "Password reset. You can now log in")
		return nil
	}),
}, gate.RouteResetPassword)

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountUpdateCmd, accountPasswordCmd, forgotPasswordCmd, resetPasswordCmd)

	accountUpdateCmd.Flags().StringVar(&accountFile, "file", "", "Profile fields (JSON or YAML, - for stdin)")
	accountPasswordCmd.Flags().StringVar(&accountFile, "file", "", "currentPassword/newPassword (JSON or YAML, - for stdin)")
	forgotPasswordCmd.Flags().StringVar(&forgotEmail, "email", "", "Account email")
	resetPasswordCmd.Flags().StringVar(&resetToken, "token", "", "Token from the reset email")
	resetPasswordCmd.Flags().BoolVar(&resetPasswordStdin, "password-stdin", false, "Read the new password from stdin")
}

// promptPasswordChange asks for the current password and the new one twice
func promptPasswordChange() (models.PasswordChange, error) {
	var change models.PasswordChange
	var confirm string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Mot de passe actuel").EchoMode(huh.EchoModePassword).Value(&change.CurrentPassword),
		huh.NewInput().Title("Nouveau mot de passe").EchoMode(huh.EchoModePassword).Value(&change.NewPassword).
			Validate(func(s string) error {
				if len(s) < 6 {
					return errors.New("6 caractères minimum")
				}
				return nil
			}),
		huh.NewInput().Title("Confirmation").EchoMode(huh.EchoModePassword).Value(&confirm),
	))
	if err := form.Run(); err != nil {
		return change, fmt.Errorf("password change cancelled: %w", err)
	}
	if confirm != change.NewPassword {
		return change, errors.New("passwords do not match")
	}
	return change, nil
}
