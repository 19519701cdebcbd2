package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spitzerl/workshop-b3-api/internal/api"
	"github.com/spitzerl/workshop-b3-api/internal/config"
	"github.com/spitzerl/workshop-b3-api/internal/format"
	"github.com/spitzerl/workshop-b3-api/internal/models"
)

func newResourceCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Manage resources",
	}

	cmd.AddCommand(
		newResourceCreateCmd(cfg, jsonOutput),
		newResourceListCmd(cfg, jsonOutput),
		newResourceShowCmd(cfg, jsonOutput),
		newResourceUpdateCmd(cfg, jsonOutput),
		newResourceDeleteCmd(cfg),
	)
	return cmd
}

func newResourceCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var req api.ResourceCreateRequest
	var assignee int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if assignee > 0 {
				req.UserID = &assignee
			}
			return withClient(cfg, func(client *api.Client) error {
				resource, err := client.CreateResource(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resource)
				}
				return writePlain("Created resource %d (%s)\n", resource.ID, resource.Title)
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "title")
	cmd.Flags().StringVar(&req.Description, "description", "", "description")
	cmd.Flags().Int64Var(&req.OwnerID, "owner", 0, "owner user id")
	cmd.Flags().Int64Var(&assignee, "assignee", 0, "assigned user id")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newResourceListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var ownerID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resources, err := client.ListResources(cmd.Context(), ownerID)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resources)
				}
				return writeTable(resourceTable(resources))
			})
		},
	}

	cmd.Flags().Int64Var(&ownerID, "owner", 0, "only resources owned by this user id")
	return cmd
}

func newResourceShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a resource",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				resource, err := client.GetResource(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resource)
				}
				return writeResourceDetail(resource)
			})
		},
	}
}

func newResourceUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var title, description string
	var ownerID, assignee int64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a resource",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			var req api.ResourceUpdateRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("owner") {
				req.OwnerID = &ownerID
			}
			if cmd.Flags().Changed("assignee") {
				req.UserID = &assignee
			}
			return withClient(cfg, func(client *api.Client) error {
				resource, err := client.UpdateResource(cmd.Context(), id, req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resource)
				}
				return writeResourceDetail(resource)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().Int64Var(&ownerID, "owner", 0, "new owner user id")
	cmd.Flags().Int64Var(&assignee, "assignee", 0, "new assigned user id")
	return cmd
}

func newResourceDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a resource",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				if err := client.DeleteResource(cmd.Context(), id); err != nil {
					return err
				}
				return writePlain("Deleted resource %d\n", id)
			})
		},
	}
}

func writeResourceDetail(r models.Resource) error {
	lines := []string{
		fmt.Sprintf("id: %d", r.ID),
		fmt.Sprintf("title: %s", r.Title),
		fmt.Sprintf("owner_id: %d", r.OwnerID),
	}
	if r.UserID != nil {
		lines = append(lines, fmt.Sprintf("assignee_id: %d", *r.UserID))
	}
	if r.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", r.Description))
	}
	lines = append(lines,
		fmt.Sprintf("created_at: %s", format.Timestamp(r.CreatedAt)),
		fmt.Sprintf("updated_at: %s", format.Timestamp(r.UpdatedAt)),
	)
	return writeLines(lines)
}
