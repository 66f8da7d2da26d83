package manifest

import (
	"context"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/wippyai/rodata/errors"
)

// HCLLoader reads HCL manifests.
type HCLLoader struct {
	parser *hclparse.Parser
}

// NewHCLLoader creates a new HCL manifest loader.
func NewHCLLoader() *HCLLoader {
	return &HCLLoader{parser: hclparse.NewParser()}
}

type hclRoot struct {
	SlotIndex         *int            `hcl:"slot_index,optional"`
	Hasher            *string         `hcl:"hasher,optional"`
	CompilerGenerated *bool           `hcl:"compiler_generated,optional"`
	WellKnown         []*hclWellKnown `hcl:"well_known,block"`
	Blobs             []*hclBlob      `hcl:"blob,block"`
	Helpers           []*hclHelper    `hcl:"helper,block"`
}

type hclWellKnown struct {
	Name string `hcl:"name,label"`
	Size uint32 `hcl:"size"`
}

type hclBlob struct {
	Label string  `hcl:"label,label"`
	Text  *string `hcl:"text,optional"`
	Hex   *string `hcl:"hex,optional"`
	File  *string `hcl:"file,optional"`
}

type hclHelper struct {
	Name  string  `hcl:"name,label"`
	Kind  string  `hcl:"kind"`
	Value *int64  `hcl:"value,optional"`
	Blob  *string `hcl:"blob,optional"`
}

// EvalContext returns the expression context manifests are evaluated in.
func EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"concat": stdlib.ConcatFunc,
			"format": stdlib.FormatFunc,
		},
	}
}

// Load parses and decodes one HCL manifest.
func (l *HCLLoader) Load(_ context.Context, path string) (*Model, error) {
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, diags, "parse "+path)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, EvalContext(), &root); diags.HasErrors() {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, diags, "decode "+path)
	}

	m := newModel()
	m.Dir = filepath.Dir(path)
	if root.SlotIndex != nil {
		m.SlotIndex = *root.SlotIndex
	}
	if root.Hasher != nil {
		m.Hasher = *root.Hasher
	}
	if root.CompilerGenerated != nil {
		m.CompilerGenerated = *root.CompilerGenerated
	}
	for _, wk := range root.WellKnown {
		m.WellKnown = append(m.WellKnown, WellKnown{Name: wk.Name, Size: wk.Size})
	}
	for _, b := range root.Blobs {
		m.Blobs = append(m.Blobs, Blob{Label: b.Label, Text: b.Text, Hex: b.Hex, File: b.File})
	}
	for _, h := range root.Helpers {
		helper := Helper{Name: h.Name, Kind: h.Kind}
		if h.Value != nil {
			helper.Value = *h.Value
		}
		if h.Blob != nil {
			helper.Blob = *h.Blob
		}
		m.Helpers = append(m.Helpers, helper)
	}
	return m, nil
}
