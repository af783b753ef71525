package config

import (
	"strconv"

	"github.com/bazelbuild/buildtools/build"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/zerr"
)

// commonAttributes are accepted on every rule and ignored.
var commonAttributes = map[string]bool{
	"visibility":             true,
	"tags":                   true,
	"testonly":               true,
	"compatible_with":        true,
	"target_compatible_with": true,
}

// declaration is one supported call found in a BUILD file.
type declaration struct {
	kind   string
	name   string
	line   int
	bundle *BundleDTO
	target *TargetDTO
}

// parseBuildFile extracts the supported rule calls of a BUILD file in declaration order.
// load statements and calls to other functions are skipped.
func parseBuildFile(filename string, data []byte) ([]declaration, []string, error) {
	f, err := build.ParseBuild(filename, data)
	if err != nil {
		return nil, nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	var decls []declaration
	var skipped []string
	for _, stmt := range f.Stmt {
		call, ok := stmt.(*build.CallExpr)
		if !ok {
			continue
		}
		ident, ok := call.X.(*build.Ident)
		if !ok {
			continue
		}

		line, _ := call.Span()
		var d declaration
		switch ident.Name {
		case domain.RuleKind:
			d, err = decodeBundleCall(call)
		case string(domain.KindJSLibrary), string(domain.KindFilegroup), string(domain.KindNpmPackage):
			d, err = decodeTargetCall(ident.Name, call)
		default:
			skipped = append(skipped, ident.Name)
			continue
		}
		if err != nil {
			return nil, nil, zerr.With(zerr.With(err, "file", filename), "line", line.Line)
		}
		d.line = line.Line
		decls = append(decls, d)
	}
	return decls, skipped, nil
}

func decodeBundleCall(call *build.CallExpr) (declaration, error) {
	d := declaration{kind: domain.RuleKind, bundle: &BundleDTO{}}
	b := d.bundle

	err := eachAttribute(call, func(name string, value build.Expr) error {
		var err error
		switch name {
		case "name":
			d.name, err = stringValue(name, value)
		case "entry_point":
			b.EntryPoint, err = stringValue(name, value)
		case "entry_points":
			b.EntryPoints, err = dictValue(name, value)
		case "srcs":
			b.Srcs, err = listValue(name, value)
		case "deps":
			b.Deps, err = listValue(name, value)
		case "format":
			b.Format, err = stringValue(name, value)
		case "output_dir":
			b.OutputDir, err = boolValue(name, value)
		case "sourcemap":
			b.Sourcemap, err = stringValue(name, value)
		case "silent":
			b.Silent, err = boolValue(name, value)
		case "silent_on_success":
			b.SilentOnSuccess, err = boolValue(name, value)
		case "supports_workers":
			b.SupportsWorkers, err = boolValue(name, value)
		case "link_workspace_root":
			b.LinkWorkspaceRoot, err = boolValue(name, value)
		case "stamp":
			b.Stamp, err = intValue(name, value)
		case "args":
			b.Args, err = listValue(name, value)
		case "config_file":
			b.ConfigFile, err = stringValue(name, value)
		default:
			if !commonAttributes[name] {
				err = zerr.With(domain.ErrUnknownAttribute, "attribute", name)
			}
		}
		return err
	})
	return d, err
}

func decodeTargetCall(kind string, call *build.CallExpr) (declaration, error) {
	d := declaration{kind: kind, target: &TargetDTO{Kind: kind}}
	t := d.target

	err := eachAttribute(call, func(name string, value build.Expr) error {
		var err error
		switch name {
		case "name":
			d.name, err = stringValue(name, value)
		case "srcs":
			t.Srcs, err = listValue(name, value)
		case "esm_srcs":
			t.EsmSrcs, err = listValue(name, value)
		case "deps":
			t.Deps, err = listValue(name, value)
		}
		// Targets come from other rule sets whose remaining attributes the planner does not read.
		return err
	})
	return d, err
}

func eachAttribute(call *build.CallExpr, fn func(name string, value build.Expr) error) error {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			return zerr.With(domain.ErrInvalidAttribute, "reason", "positional arguments are not supported")
		}
		lhs, ok := assign.LHS.(*build.Ident)
		if !ok {
			continue
		}
		if err := fn(lhs.Name, assign.RHS); err != nil {
			return err
		}
	}
	return nil
}

func invalid(name, want string) error {
	return zerr.With(zerr.With(domain.ErrInvalidAttribute, "attribute", name), "expected", want)
}

func stringValue(name string, expr build.Expr) (string, error) {
	str, ok := expr.(*build.StringExpr)
	if !ok {
		return "", invalid(name, "string")
	}
	return str.Value, nil
}

func boolValue(name string, expr build.Expr) (bool, error) {
	switch e := expr.(type) {
	case *build.Ident:
		switch e.Name {
		case "True":
			return true, nil
		case "False":
			return false, nil
		}
	case *build.LiteralExpr:
		switch e.Token {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
	}
	return false, invalid(name, "bool")
}

// intValue returns the integer attribute in its decimal string form.
func intValue(name string, expr build.Expr) (string, error) {
	switch e := expr.(type) {
	case *build.LiteralExpr:
		if _, err := strconv.Atoi(e.Token); err == nil {
			return e.Token, nil
		}
	case *build.UnaryExpr:
		if lit, ok := e.X.(*build.LiteralExpr); ok && e.Op == "-" {
			if _, err := strconv.Atoi(lit.Token); err == nil {
				return "-" + lit.Token, nil
			}
		}
	case *build.StringExpr:
		return e.Value, nil
	}
	return "", invalid(name, "int")
}

func listValue(name string, expr build.Expr) ([]string, error) {
	list, ok := expr.(*build.ListExpr)
	if !ok {
		return nil, invalid(name, "list of strings")
	}
	out := make([]string, 0, len(list.List))
	for _, elem := range list.List {
		str, ok := elem.(*build.StringExpr)
		if !ok {
			return nil, invalid(name, "list of strings")
		}
		out = append(out, str.Value)
	}
	return out, nil
}

func dictValue(name string, expr build.Expr) (Ordered[string], error) {
	dict, ok := expr.(*build.DictExpr)
	if !ok {
		return nil, invalid(name, "dict of strings")
	}
	out := make(Ordered[string], 0, len(dict.List))
	for _, kv := range dict.List {
		key, keyOK := kv.Key.(*build.StringExpr)
		value, valueOK := kv.Value.(*build.StringExpr)
		if !keyOK || !valueOK {
			return nil, invalid(name, "dict of strings")
		}
		out = append(out, Entry[string]{Key: key.Value, Value: value.Value})
	}
	return out, nil
}
