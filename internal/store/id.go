package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateVersionID returns a globally unique version identifier of the form
// v<number>f<32 hex>, e.g. v1f0c7d…; the prefix keeps ids readable in listings.
func GenerateVersionID(versionNumber int) (string, error) {
	if versionNumber <= 0 {
		return "", fmt.Errorf("version number must be > 0")
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("v%df%s", versionNumber, strings.ReplaceAll(id.String(), "-", "")), nil
}
