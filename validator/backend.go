package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/srerickson/eark"
	"github.com/srerickson/eark/backend"
	"github.com/srerickson/eark/backend/local"
	"github.com/srerickson/eark/backend/zipfs"
)

// OpenBackend returns a backend for the package at name: a folder backend
// for directories and a zip backend for ZIP archives. Other files are not
// supported.
func OpenBackend(name string) (backend.Backend, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}
	if info.IsDir() {
		return local.Open(name)
	}
	if zipfs.IsZip(name) || strings.EqualFold(filepath.Ext(name), ".zip") {
		return zipfs.Open(name)
	}
	return nil, fmt.Errorf("opening package %q: %w", name, eark.ErrUnsupported)
}
