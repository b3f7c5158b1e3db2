// pkg/engine/options.go
package engine

import (
	"github.com/spf13/cast"
)

// Options holds the per-context option values for one selected module.
// Values set at the prompt are coerced to the declared OptionType on entry,
// so modules always read correctly typed values.
type Options struct {
	specs  []OptionSpec
	index  map[string]OptionSpec
	values map[string]interface{}
}

// NewOptions creates an option bag for the given specs. Specs keep their
// declaration order for rendering.
func NewOptions(specs []OptionSpec) *Options {
	o := &Options{
		specs:  append([]OptionSpec(nil), specs...),
		index:  make(map[string]OptionSpec, len(specs)),
		values: make(map[string]interface{}, len(specs)),
	}
	for _, s := range o.specs {
		o.index[s.Name] = s
	}
	return o
}

// Specs returns the option specs in declaration order.
func (o *Options) Specs() []OptionSpec {
	return append([]OptionSpec(nil), o.specs...)
}

// Set coerces raw to the declared type and stores it. Unknown names and
// uncoercible values fail with ErrInvalidOption.
func (o *Options) Set(name string, raw interface{}) error {
	spec, ok := o.index[name]
	if !ok {
		return &InvalidOptionError{Option: name, Reason: "not declared by this module"}
	}
	value, err := coerceOption(spec, raw)
	if err != nil {
		return err
	}
	o.values[name] = value
	return nil
}

// Unset removes an explicit value, restoring the declared default.
func (o *Options) Unset(name string) error {
	if _, ok := o.index[name]; !ok {
		return &InvalidOptionError{Option: name, Reason: "not declared by this module"}
	}
	delete(o.values, name)
	return nil
}

// IsSet reports whether an explicit value has been set for name.
func (o *Options) IsSet(name string) bool {
	_, ok := o.values[name]
	return ok
}

// Get returns the effective value for name: the explicit value if set,
// otherwise the declared default. ok is false for undeclared names.
func (o *Options) Get(name string) (value interface{}, ok bool) {
	spec, declared := o.index[name]
	if !declared {
		return nil, false
	}
	if v, set := o.values[name]; set {
		return v, true
	}
	return spec.Default, true
}

// GetString returns the effective value of a string option.
func (o *Options) GetString(name string) string {
	v, ok := o.Get(name)
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// GetInt returns the effective value of an int option.
func (o *Options) GetInt(name string) int {
	v, ok := o.Get(name)
	if !ok || v == nil {
		return 0
	}
	return cast.ToInt(v)
}

// GetBool returns the effective value of a bool option.
func (o *Options) GetBool(name string) bool {
	v, ok := o.Get(name)
	if !ok || v == nil {
		return false
	}
	return cast.ToBool(v)
}

// Resolved returns every declared option with its effective value.
func (o *Options) Resolved() map[string]interface{} {
	out := make(map[string]interface{}, len(o.specs))
	for _, s := range o.specs {
		if v, set := o.values[s.Name]; set {
			out[s.Name] = v
			continue
		}
		out[s.Name] = s.Default
	}
	return out
}

// Validate checks that every required option is satisfied, either by an
// explicit value or a declared default. It reports the first gap in
// declaration order so the operator can fix options one by one.
func (o *Options) Validate() error {
	for _, s := range o.specs {
		if !s.Required {
			continue
		}
		if _, set := o.values[s.Name]; set {
			continue
		}
		if s.Default != nil {
			continue
		}
		return &MissingRequiredOptionError{Option: s.Name}
	}
	return nil
}

// coerceOption converts raw (often a string typed at the prompt) to the
// spec's declared type.
func coerceOption(spec OptionSpec, raw interface{}) (interface{}, error) {
	switch spec.Type {
	case OptionInt:
		v, err := cast.ToIntE(raw)
		if err != nil {
			return nil, &InvalidOptionError{Option: spec.Name, Reason: cast.ToString(raw) + " is not a valid int"}
		}
		return v, nil
	case OptionBool:
		v, err := cast.ToBoolE(raw)
		if err != nil {
			return nil, &InvalidOptionError{Option: spec.Name, Reason: cast.ToString(raw) + " is not a valid bool"}
		}
		return v, nil
	default:
		v, err := cast.ToStringE(raw)
		if err != nil {
			return nil, &InvalidOptionError{Option: spec.Name, Reason: "value is not a valid string"}
		}
		return v, nil
	}
}
