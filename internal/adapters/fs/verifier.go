package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Verifier = (*Verifier)(nil)

// Verifier checks that declared outputs exist.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyOutputs returns the declared outputs of plan that are missing under root.
// A directory plan requires a directory; file entries require regular files.
func (v *Verifier) VerifyOutputs(root string, plan domain.OutputPlan) ([]string, error) {
	var missing []string
	for _, artifact := range plan.Artifacts() {
		path := filepath.Join(root, filepath.FromSlash(artifact.Path()))
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			missing = append(missing, artifact.Path())
			continue
		}
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to stat output"), "path", path)
		}

		wantDir := plan.Kind == domain.OutputDirectory
		if info.IsDir() != wantDir {
			missing = append(missing, artifact.Path())
		}
	}
	return missing, nil
}
