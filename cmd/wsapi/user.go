package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spitzerl/workshop-b3-api/internal/api"
	"github.com/spitzerl/workshop-b3-api/internal/config"
	"github.com/spitzerl/workshop-b3-api/internal/format"
	"github.com/spitzerl/workshop-b3-api/internal/models"
)

func newUserCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(
		newUserCreateCmd(cfg, jsonOutput),
		newUserListCmd(cfg, jsonOutput),
		newUserShowCmd(cfg, jsonOutput),
		newUserUpdateCmd(cfg, jsonOutput),
		newUserDeleteCmd(cfg),
	)
	return cmd
}

func newUserCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var req api.UserCreateRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				user, err := client.CreateUser(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(user)
				}
				return writePlain("Created user %d (%s)\n", user.ID, user.Email)
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				users, err := client.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(users)
				}
				return writeTable(userTable(users))
			})
		},
	}
}

func newUserShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|email>",
		Short: "Show a user by id or email",
		Args:  requireExactlyArgs(1, "id or email is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				user, err := client.GetUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(user)
				}
				return writeUserDetail(user)
			})
		},
	}
}

func newUserUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "update <id|email>",
		Short: "Update a user",
		Args:  requireExactlyArgs(1, "id or email is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.UserUpdateRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("email") {
				req.Email = &email
			}
			if cmd.Flags().Changed("password") {
				req.Password = &password
			}
			return withClient(cfg, func(client *api.Client) error {
				user, err := client.UpdateUser(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(user)
				}
				return writeUserDetail(user)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&email, "email", "", "new email address")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}

func newUserDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|email>",
		Short: "Delete a user without files",
		Args:  requireExactlyArgs(1, "id or email is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				if err := client.DeleteUser(cmd.Context(), args[0]); err != nil {
					return err
				}
				return writePlain("Deleted user %s\n", args[0])
			})
		},
	}
}

func newVerifyCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var req api.VerifyRequest

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check an email and password pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Verify(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				if resp.User == nil {
					return writePlain("valid: %t\n", resp.Valid)
				}
				return writePlain("valid: %t (user %d, %s)\n", resp.Valid, resp.User.ID, resp.User.Email)
			})
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	return cmd
}

func writeUserDetail(user models.User) error {
	return writeLines([]string{
		fmt.Sprintf("id: %d", user.ID),
		fmt.Sprintf("name: %s", user.Name),
		fmt.Sprintf("email: %s", user.Email),
		fmt.Sprintf("created_at: %s", format.Timestamp(user.CreatedAt)),
		fmt.Sprintf("updated_at: %s", format.Timestamp(user.UpdatedAt)),
	})
}
