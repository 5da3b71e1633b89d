package sweep

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/gridsweep/gridsweep/internal/ctxlog"
	"github.com/gridsweep/gridsweep/internal/fsutil"
)

// fileRoot decodes the top-level blocks of one sweep spec file.
type fileRoot struct {
	Sweeps []*sweepBlock `hcl:"sweep,block"`
	Remain hcl.Body      `hcl:",remain"`
}

type sweepBlock struct {
	Name   string        `hcl:"name,optional"`
	Params []*paramBlock `hcl:"param,block"`
}

type paramBlock struct {
	Name   string         `hcl:"name,label"`
	Value  hcl.Expression `hcl:"value,optional"`
	Values hcl.Expression `hcl:"values,optional"`
}

// Load reads a sweep specification from path, which may be a single .hcl
// file or a directory searched recursively for .hcl files. Exactly one
// sweep block must exist across all files. Anything user-caused (syntax,
// structure, degenerate declarations) surfaces as *InvalidSpecError.
func Load(ctx context.Context, path string) (*Spec, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("accessing sweep spec %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, &InvalidSpecError{Reason: "no .hcl files under " + path}
		}
	}
	logger.Debug("loading sweep spec", "files", len(files))

	parser := hclparse.NewParser()
	var block *sweepBlock

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, &InvalidSpecError{Reason: diags.Error()}
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, &InvalidSpecError{Reason: diags.Error()}
		}

		for _, sw := range root.Sweeps {
			if block != nil {
				return nil, &InvalidSpecError{Reason: "more than one sweep block declared"}
			}
			block = sw
		}
	}

	if block == nil {
		return nil, &InvalidSpecError{Reason: "no sweep block declared"}
	}

	spec, err := translate(block)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("sweep spec loaded", "name", spec.Name, "params", len(spec.Params))
	return spec, nil
}

// evalOptional evaluates an optional attribute expression. gohcl fills
// absent optional hcl.Expression fields with a synthetic null expression
// rather than leaving them nil, so "not set" means "evaluates to null".
func evalOptional(expr hcl.Expression) (cty.Value, bool, hcl.Diagnostics) {
	if expr == nil {
		return cty.NilVal, false, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, false, diags
	}
	return val, !val.IsNull(), nil
}

// translate evaluates each param block's value expressions into native Go
// candidates, preserving declaration order.
func translate(block *sweepBlock) (*Spec, error) {
	spec := &Spec{Name: block.Name}

	for _, p := range block.Params {
		value, hasValue, diags := evalOptional(p.Value)
		if diags.HasErrors() {
			return nil, &InvalidSpecError{Reason: diags.Error()}
		}
		values, hasValues, diags := evalOptional(p.Values)
		if diags.HasErrors() {
			return nil, &InvalidSpecError{Reason: diags.Error()}
		}
		if hasValue == hasValues {
			return nil, &InvalidSpecError{
				Reason: "parameter " + quote(p.Name) + " must set exactly one of value or values",
			}
		}

		param := Parameter{Name: p.Name}
		if hasValue {
			native, err := ctyToNative(value)
			if err != nil {
				return nil, &InvalidSpecError{Reason: "parameter " + quote(p.Name) + ": " + err.Error()}
			}
			param.Candidates = []any{native}
			param.Fixed = true
		} else {
			if ty := values.Type(); !ty.IsListType() && !ty.IsTupleType() {
				return nil, &InvalidSpecError{
					Reason: "parameter " + quote(p.Name) + ": values must be a list",
				}
			}
			it := values.ElementIterator()
			for it.Next() {
				_, elem := it.Element()
				native, err := ctyToNative(elem)
				if err != nil {
					return nil, &InvalidSpecError{Reason: "parameter " + quote(p.Name) + ": " + err.Error()}
				}
				param.Candidates = append(param.Candidates, native)
			}
		}
		spec.Params = append(spec.Params, param)
	}

	return spec, nil
}
