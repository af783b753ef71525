package fs

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes xxhash digests of descriptors and outputs.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeDescriptorHash digests the JSON encoding of desc.
// Map keys are encoded in sorted order, so equal descriptors have equal digests.
func (h *Hasher) ComputeDescriptorHash(desc *domain.InvocationDescriptor) (string, error) {
	data, err := json.Marshal(desc)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrDescriptorHashFailed.Error()), "rule", desc.Label.String())
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

// ComputeFileHash computes the xxhash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// ComputeOutputHash digests the declared outputs under root in declaration order.
// Directory outputs contribute every file below them.
func (h *Hasher) ComputeOutputHash(root string, plan domain.OutputPlan) (string, error) {
	hasher := xxhash.New()

	for _, artifact := range plan.Artifacts() {
		path := filepath.Join(root, filepath.FromSlash(artifact.Path()))
		info, err := os.Stat(path)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to stat output"), "path", path)
		}

		if !info.IsDir() {
			if err := h.hashFile(root, path, hasher); err != nil {
				return "", err
			}
			continue
		}

		for file, err := range h.walker.WalkFiles(path) {
			if err != nil {
				return "", zerr.With(zerr.Wrap(err, "failed to walk output directory"), "path", file)
			}
			if err := h.hashFile(root, file, hasher); err != nil {
				return "", err
			}
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// hashFile writes the root relative path and the content digest of path.
func (h *Hasher) hashFile(root, path string, mainHasher io.Writer) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	_, _ = mainHasher.Write([]byte(filepath.ToSlash(rel)))
	_, _ = mainHasher.Write([]byte{0})

	hash, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}

	if err := binary.Write(mainHasher, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
