package manifest

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/wippyai/rodata/contenthash"
	"github.com/wippyai/rodata/errors"
	"github.com/wippyai/rodata/helper"
)

// Validate checks a Model and reports every problem found, combined with
// multierr.
func Validate(m *Model) error {
	var errs error
	add := func(err error) { errs = multierr.Append(errs, err) }

	if m.SlotIndex < -1 {
		add(errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("slot_index").
			Value(m.SlotIndex).
			Detail("must be -1 or a non-negative index").
			Build())
	}
	if _, err := contenthash.Lookup(m.Hasher); err != nil {
		add(err)
	}

	sizes := make(map[uint32]string)
	names := make(map[string]struct{})
	for _, wk := range m.WellKnown {
		path := []string{"well_known", wk.Name}
		switch wk.Size {
		case 1, 2, 4, 8:
		default:
			add(errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path(path...).
				Value(wk.Size).
				Detail("size is not one of 1, 2, 4, 8").
				Build())
		}
		if wk.Name == "" {
			add(errors.InvalidInput(errors.PhaseConfig, path, "name is empty"))
		}
		if _, dup := names[wk.Name]; dup {
			add(errors.Duplicate(errors.PhaseConfig, path, "well-known type", wk.Name))
		}
		names[wk.Name] = struct{}{}
		if other, dup := sizes[wk.Size]; dup {
			add(errors.New(errors.PhaseConfig, errors.KindDuplicate).
				Path(path...).
				Detail("size %d already taken by %q", wk.Size, other).
				Build())
		} else {
			sizes[wk.Size] = wk.Name
		}
	}

	labels := make(map[string]struct{}, len(m.Blobs))
	for i := range m.Blobs {
		b := &m.Blobs[i]
		path := []string{"blob", b.Label}
		if b.Label == "" {
			add(errors.InvalidInput(errors.PhaseConfig, path, "label is empty"))
		}
		if _, dup := labels[b.Label]; dup {
			add(errors.Duplicate(errors.PhaseConfig, path, "blob", b.Label))
		}
		labels[b.Label] = struct{}{}

		set := 0
		for _, p := range []*string{b.Text, b.Hex, b.File} {
			if p != nil {
				set++
			}
		}
		if set != 1 {
			add(errors.InvalidInput(errors.PhaseConfig, path,
				fmt.Sprintf("exactly one of text, hex, file is required, got %d", set)))
		}
	}

	helpers := make(map[string]struct{}, len(m.Helpers))
	for _, h := range m.Helpers {
		path := []string{"helper", h.Name}
		if h.Name == "" {
			add(errors.InvalidInput(errors.PhaseConfig, path, "name is empty"))
		}
		if _, dup := helpers[h.Name]; dup {
			add(errors.Duplicate(errors.PhaseConfig, path, "helper", h.Name))
		}
		helpers[h.Name] = struct{}{}

		switch h.Kind {
		case helper.KindConst, helper.KindStringHash:
		case helper.KindFieldAddress:
			if _, ok := labels[h.Blob]; !ok {
				add(errors.New(errors.PhaseConfig, errors.KindNotFound).
					Path(path...).
					Entity("blob", h.Blob).
					Detail("referenced by field_address helper").
					Build())
			}
		default:
			add(errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path(path...).
				Value(h.Kind).
				Detail("unknown helper kind").
				Build())
		}
	}

	return errs
}
