package ports

import "go.trai.ch/bundlerule/internal/core/domain"

// PackageLoader reads the rule files of a workspace.
//
//go:generate go run go.uber.org/mock/mockgen -source=package_loader.go -destination=mocks/mock_package_loader.go -package=mocks
type PackageLoader interface {
	// FindWorkspaceRoot returns the nearest ancestor of dir holding a workspace marker.
	FindWorkspaceRoot(dir string) (string, error)

	// LoadPackage loads the rule file of the package pkg under the workspace root.
	// It returns domain.ErrPackageNotFound when the directory has no rule file.
	LoadPackage(root, pkg string) (*domain.Package, error)
}
