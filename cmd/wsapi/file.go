package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spitzerl/workshop-b3-api/internal/api"
	"github.com/spitzerl/workshop-b3-api/internal/config"
	"github.com/spitzerl/workshop-b3-api/internal/format"
)

func newFileCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Upload, replace and download versioned files",
	}

	cmd.AddCommand(
		newFileUploadCmd(cfg, jsonOutput),
		newFileReplaceCmd(cfg, jsonOutput),
		newFileListCmd(cfg, jsonOutput),
		newFileShowCmd(cfg, jsonOutput),
		newFileVersionsCmd(cfg, jsonOutput),
		newFileDownloadCmd(cfg),
		newFileDeleteCmd(cfg),
	)
	return cmd
}

func newFileUploadCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var ownerID int64
	var public bool
	var name string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a new file",
		Args:  requireExactlyArgs(1, "path is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ownerID <= 0 {
				return fmt.Errorf("--owner is required")
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.UploadFile(cmd.Context(), ownerID, public, uploadName(name, args[0]), f)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("Uploaded %s as file %d (v%d, %s, %s)\n",
					resp.Name, resp.ID, resp.VersionNumber, resp.VersionID, format.Size(resp.SizeBytes))
			})
		},
	}

	cmd.Flags().Int64Var(&ownerID, "owner", 0, "owner user id")
	cmd.Flags().BoolVar(&public, "public", false, "list the file publicly")
	cmd.Flags().StringVar(&name, "name", "", "file name to store (defaults to the local base name)")
	return cmd
}

func newFileReplaceCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "replace <id> <path>",
		Short: "Upload a new version of an existing file",
		Args:  requireExactlyArgs(2, "id and path are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.ReplaceFile(cmd.Context(), id, uploadName(name, args[1]), f)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("File %d is now v%d (%s)\n", resp.ID, resp.VersionNumber, resp.NewVersionID)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "file name to store (defaults to the local base name)")
	return cmd
}

func newFileListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var ownerID int64
	var public bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				files, err := client.ListFiles(cmd.Context(), ownerID, public)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(files)
				}
				return writeTable(fileTable(files))
			})
		},
	}

	cmd.Flags().Int64Var(&ownerID, "owner", 0, "only files owned by this user id")
	cmd.Flags().BoolVar(&public, "public", false, "only public files")
	return cmd
}

func newFileShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show file metadata",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				file, err := client.GetFile(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(file)
				}
				return writeFileDetail(file)
			})
		},
	}
}

func newFileVersionsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "versions <id>",
		Short: "List the versions of a file, newest first",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				versions, err := client.ListFileVersions(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(versions)
				}
				return writeTable(versionTable(versions))
			})
		},
	}
}

func newFileDownloadCmd(cfg *config.Config) *cobra.Command {
	var output string
	var versionID string

	cmd := &cobra.Command{
		Use:   "download [id]",
		Short: "Download the current version, or a specific one with --version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			versionID = strings.TrimSpace(versionID)
			if versionID == "" && len(args) == 0 {
				return fmt.Errorf("id or --version is required")
			}
			var id int64
			if versionID == "" {
				parsed, err := parseIDArg(args[0])
				if err != nil {
					return err
				}
				id = parsed
			}

			return withClient(cfg, func(client *api.Client) error {
				w, closeFn, err := openOutput(output)
				if err != nil {
					return err
				}
				defer closeFn()

				var n int64
				if versionID != "" {
					n, err = client.DownloadVersion(cmd.Context(), versionID, w)
				} else {
					n, err = client.DownloadFile(cmd.Context(), id, w)
				}
				if err != nil {
					return err
				}
				if output != "" && output != "-" {
					fmt.Fprintf(os.Stderr, "Wrote %s to %s\n", format.Size(n), output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this path instead of stdout")
	cmd.Flags().StringVar(&versionID, "version", "", "version id to download")
	return cmd
}

func newFileDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a file and every version",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				if err := client.DeleteFile(cmd.Context(), id); err != nil {
					return err
				}
				return writePlain("Deleted file %d\n", id)
			})
		},
	}
}

func uploadName(override, path string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return filepath.Base(path)
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
