package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spitzerl/workshop-b3-api/internal/config"
	"github.com/spitzerl/workshop-b3-api/internal/seed"
)

func newSeedCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed [fixture.yaml]",
		Short: "Load users, resources and files from a YAML fixture",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !reset {
				return requireExactlyArgs(1, "fixture path is required")(cmd, args)
			}

			var fixture *seed.Fixture
			if len(args) == 1 {
				loaded, err := seed.LoadFile(args[0])
				if err != nil {
					return err
				}
				fixture = loaded
			}

			logger := slog.Default()
			srv, closeFn, err := openServer(cfg, "", logger)
			if err != nil {
				return err
			}
			defer closeFn()

			seeder := seed.New(srv.UserService(), srv.ResourceService(), srv.FileService(), logger)
			var total seed.Result
			if reset {
				removed, err := seeder.Reset(cmd.Context())
				if err != nil {
					return err
				}
				total = removed
			}
			if fixture != nil {
				applied, err := seeder.Apply(cmd.Context(), fixture)
				if err != nil {
					return err
				}
				applied.FilesDeleted = total.FilesDeleted
				applied.ResourcesDeleted = total.ResourcesDeleted
				applied.UsersDeleted = total.UsersDeleted
				total = applied
			}

			if *jsonOutput {
				return writeJSON(total)
			}
			if reset {
				if err := writePlain("Removed %d files, %d resources, %d users\n",
					total.FilesDeleted, total.ResourcesDeleted, total.UsersDeleted); err != nil {
					return err
				}
			}
			if fixture != nil {
				return writePlain("Created %d users (%d reused), %d resources, %d files with %d versions\n",
					total.UsersCreated, total.UsersReused, total.ResourcesCreated, total.FilesCreated, total.VersionsCreated)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "delete all files, resources and users first")
	return cmd
}
