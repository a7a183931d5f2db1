package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/giygas/druginfo/entities"
)

// ImagePrefix marks input naming a photo to upload instead of a drug name
const ImagePrefix = "@"

// ParseInput turns a line typed by the user into a query. "@path" reads
// the photo at path with readFile; anything else is a drug name.
func ParseInput(raw string, readFile func(string) ([]byte, error)) (entities.Query, error) {
	input := strings.TrimSpace(raw)
	if !strings.HasPrefix(input, ImagePrefix) {
		return entities.Query{DrugName: input}, nil
	}

	path := strings.TrimSpace(strings.TrimPrefix(input, ImagePrefix))
	if path == "" {
		return entities.Query{}, fmt.Errorf("no image path after %q", ImagePrefix)
	}

	data, err := readFile(path)
	if err != nil {
		return entities.Query{}, fmt.Errorf("could not read image %s: %w", path, err)
	}

	return entities.Query{Image: &entities.ImageUpload{Filename: filepath.Base(path), Data: data}}, nil
}
