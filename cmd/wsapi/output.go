package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spitzerl/workshop-b3-api/internal/format"
	"github.com/spitzerl/workshop-b3-api/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeLines(lines []string) error {
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func fileTable(files []models.LogicalFile) format.Table {
	table := format.Table{Headers: []string{"ID", "NAME", "VERSION", "SIZE", "OWNER", "VISIBILITY", "UPDATED"}}
	for _, f := range files {
		table.AddRow(
			strconv.FormatInt(f.ID, 10),
			f.Name,
			"v"+strconv.Itoa(f.VersionNumber),
			format.Size(f.SizeBytes),
			strconv.FormatInt(f.OwnerID, 10),
			string(f.Visibility()),
			format.Ago(f.UpdatedAt),
		)
	}
	return table
}

func writeFileDetail(f models.LogicalFile) error {
	return writeLines([]string{
		fmt.Sprintf("id: %d", f.ID),
		fmt.Sprintf("name: %s", f.Name),
		fmt.Sprintf("mime_type: %s", f.MimeType),
		fmt.Sprintf("owner_id: %d", f.OwnerID),
		fmt.Sprintf("visibility: %s", f.Visibility()),
		fmt.Sprintf("version: %d (%s)", f.VersionNumber, f.CurrentVersionID),
		fmt.Sprintf("size: %s", format.Size(f.SizeBytes)),
		fmt.Sprintf("created_at: %s", format.Timestamp(f.CreatedAt)),
		fmt.Sprintf("updated_at: %s", format.Timestamp(f.UpdatedAt)),
	})
}

func versionTable(versions []models.FileVersion) format.Table {
	table := format.Table{Headers: []string{"VERSION", "ID", "SIZE", "UPLOADED"}}
	for _, v := range versions {
		table.AddRow(
			"v"+strconv.Itoa(v.VersionNumber),
			v.ID,
			format.Size(v.SizeBytes),
			format.Timestamp(v.UploadedAt),
		)
	}
	return table
}

func userTable(users []models.User) format.Table {
	table := format.Table{Headers: []string{"ID", "NAME", "EMAIL", "CREATED"}}
	for _, u := range users {
		table.AddRow(strconv.FormatInt(u.ID, 10), u.Name, u.Email, format.Timestamp(u.CreatedAt))
	}
	return table
}

func resourceTable(resources []models.Resource) format.Table {
	table := format.Table{Headers: []string{"ID", "TITLE", "OWNER", "ASSIGNEE", "UPDATED"}}
	for _, r := range resources {
		assignee := "-"
		if r.UserID != nil {
			assignee = strconv.FormatInt(*r.UserID, 10)
		}
		table.AddRow(strconv.FormatInt(r.ID, 10), r.Title, strconv.FormatInt(r.OwnerID, 10), assignee, format.Ago(r.UpdatedAt))
	}
	return table
}

func writeTable(table format.Table) error {
	return table.Write(os.Stdout)
}
