package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the built-in catalog. It is built once per process and
// shared, since a Catalog is read-only after construction.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(bytes.NewReader(defaultCatalogYAML))
		if defaultErr != nil {
			defaultErr = fmt.Errorf("built-in catalog: %w", defaultErr)
		}
	})
	return defaultCatalog, defaultErr
}

// DefaultYAML returns the source of the built-in catalog.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultCatalogYAML))
	copy(out, defaultCatalogYAML)
	return out
}
