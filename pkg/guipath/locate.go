package guipath

import (
	"fmt"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
)

// Locate expands variables in text, parses it and resolves it below root.
// A nil element with a nil error means the path is well-formed but not found.
func (r *Resolver) Locate(root ports.Element, text string, mode domain.PathMode, v Visitor) (ports.Element, error) {
	if r.vars != nil {
		text = r.vars.Expand(text)
	}
	path, err := domain.ParsePath(text, mode)
	if err != nil {
		return nil, fmt.Errorf("locate: %w", err)
	}
	return r.Resolve(root, path, v), nil
}
