package catalog

import "fmt"

// DefaultPlaceholder labels the empty option when nothing else is configured.
const DefaultPlaceholder = "-- Select a Template --"

// Option is one selectable entry. The placeholder option has an empty Value.
type Option struct {
	Value string
	Label string
}

// Selector is the display model of a template (or level) picker.
type Selector struct {
	Options []Option
	Value   string
	// Placeholder is remembered across reloads once resolved.
	Placeholder string
	// Disabled is set while the option list is being replaced.
	Disabled bool
}

func (s Selector) Has(value string) bool {
	for _, o := range s.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Select changes the current value. Unknown values are rejected.
func (s *Selector) Select(value string) error {
	if !s.Has(value) {
		return fmt.Errorf("unknown option %q", value)
	}
	s.Value = value
	return nil
}

// Choices returns the non-placeholder options.
func (s Selector) Choices() []Option {
	choices := make([]Option, 0, len(s.Options))
	for _, o := range s.Options {
		if o.Value == "" {
			continue
		}
		choices = append(choices, o)
	}
	return choices
}

func (s *Selector) placeholderLabel(configured string) string {
	switch {
	case s.Placeholder != "":
		return s.Placeholder
	case configured != "":
		return configured
	case len(s.Options) > 0 && s.Options[0].Label != "":
		return s.Options[0].Label
	default:
		return DefaultPlaceholder
	}
}
