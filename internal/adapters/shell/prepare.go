package shell

import (
	"os"
	"path/filepath"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/zerr"
)

// Prepare removes the declared outputs of an earlier run, creates the directories the
// action writes into and writes its param file. Paths in desc are relative to execRoot.
func Prepare(execRoot string, desc *domain.InvocationDescriptor) error {
	dirs := make(map[string]struct{})
	for _, out := range desc.OutputPlan.Artifacts() {
		path := filepath.Join(execRoot, filepath.FromSlash(out.Path()))
		if err := os.RemoveAll(path); err != nil {
			return domain.ExecutionError(zerr.With(zerr.Wrap(err, domain.ErrStaleOutputRemoveFailed.Error()), "path", path))
		}
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		//nolint:gosec // G301: output directories are shared with the bundler
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return domain.ExecutionError(zerr.With(zerr.Wrap(err, domain.ErrOutputDirCreateFailed.Error()), "path", dir))
		}
	}

	if desc.ParamFile == nil {
		return nil
	}

	path := filepath.Join(execRoot, filepath.FromSlash(desc.ParamFile.File.Path()))
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return domain.ExecutionError(zerr.With(zerr.Wrap(err, domain.ErrOutputDirCreateFailed.Error()), "path", filepath.Dir(path)))
	}
	//nolint:gosec // G306: param files are read by the bundler
	if err := os.WriteFile(path, []byte(desc.ParamFileContent()), domain.FilePerm); err != nil {
		return domain.ExecutionError(zerr.With(zerr.Wrap(err, domain.ErrParamFileWriteFailed.Error()), "path", path))
	}
	return nil
}
