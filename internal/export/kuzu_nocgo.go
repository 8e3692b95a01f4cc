//go:build !cgo

package export

import (
	"errors"

	"github.com/hyz0906/graphrag-demo/internal/graph"
)

// WriteKuzu requires cgo for the KuzuDB driver.
func WriteKuzu(_ *graph.Graph, _ string) error {
	return errors.New("kuzu export requires a cgo-enabled build")
}
