package config

import (
	"errors"
	"fmt"

	apperrors "filephile/internal/errors"
	"filephile/internal/input/action"
	"filephile/internal/input/binding"
	"filephile/internal/input/key"
	"filephile/internal/nav"
	"filephile/internal/operation"
)

// Validate checks every setting and binding. The first problem found is
// returned as a ConfigInvalid error naming the offending setting.
func Validate(cfg *Config) error {
	if cfg.SequenceTimeoutMS <= 0 {
		return apperrors.NewConfigError("sequence_timeout_ms must be positive", "sequence_timeout_ms",
			fmt.Errorf("got %d", cfg.SequenceTimeoutMS))
	}
	if cfg.ScrollOff < 0 {
		return apperrors.NewConfigError("scroll_off must not be negative", "scroll_off",
			fmt.Errorf("got %d", cfg.ScrollOff))
	}
	if _, err := nav.ParseCriterion(cfg.Sort); err != nil {
		return apperrors.NewConfigError("invalid sort", "sort", err)
	}
	if _, err := operation.ParsePolicy(cfg.ConflictPolicy); err != nil {
		return apperrors.NewConfigError("invalid conflict_policy", "conflict_policy", err)
	}
	for name, tmpl := range cfg.ExternalCommands {
		if _, err := operation.Expand(tmpl, nil, ""); err != nil {
			return apperrors.NewConfigError("invalid external command", "external_commands."+name, err)
		}
	}
	for i, b := range cfg.Bindings {
		if _, err := parseBinding(b); err != nil {
			return apperrors.NewConfigError("invalid binding", fmt.Sprintf("bindings[%d]", i), err)
		}
	}
	return nil
}

// parseBinding converts a configured binding. Unbind entries come back with
// action None.
func parseBinding(b Binding) (binding.Binding, error) {
	out := binding.Binding{Chain: b.Chain, Description: b.Description}
	if b.Mode == "global" {
		out.Global = true
	} else {
		mode, err := action.ParseMode(b.Mode)
		if err != nil {
			return out, err
		}
		out.Mode = mode
	}
	keys, err := key.ParseSequence(b.Keys)
	if err != nil {
		return out, fmt.Errorf("keys %q: %w", b.Keys, err)
	}
	out.Keys = keys
	if b.Action == unbind {
		return out, nil
	}
	act, err := action.Parse(b.Action)
	if err != nil {
		return out, err
	}
	out.Action = act
	return out, nil
}

// BuildTable builds the binding table: the defaults, overridden by
// configured bindings with the same scope and keys
func BuildTable(cfg *Config) (*binding.Table, error) {
	type slot struct {
		scope string
		keys  string
	}
	var order []slot
	merged := make(map[slot]binding.Binding)
	add := func(b Binding, param string) error {
		parsed, err := parseBinding(b)
		if err != nil {
			return apperrors.NewConfigError("invalid binding", param, err)
		}
		s := slot{scope: parsed.Scope(), keys: parsed.Keys.String()}
		if _, ok := merged[s]; !ok {
			order = append(order, s)
		}
		merged[s] = parsed
		return nil
	}

	for i, b := range DefaultBindings() {
		if err := add(b, fmt.Sprintf("default[%d]", i)); err != nil {
			return nil, err
		}
	}
	for i, b := range cfg.Bindings {
		if err := add(b, fmt.Sprintf("bindings[%d]", i)); err != nil {
			return nil, err
		}
	}

	table := binding.New(
		binding.WithTimeout(cfg.SequenceTimeout()),
		binding.WithStrictPrefixes(cfg.StrictPrefixes),
	)
	for _, s := range order {
		b := merged[s]
		if b.Action.Kind == action.None {
			continue
		}
		if err := table.Add(b); err != nil {
			param := "bindings"
			if errors.Is(err, binding.ErrPrefixConflict) {
				param = "strict_prefixes"
			}
			return nil, apperrors.NewConfigError("conflicting bindings", param, err)
		}
	}
	return table, nil
}

// NavOptions returns the navigation settings
func (c *Config) NavOptions() nav.Options {
	crit, err := nav.ParseCriterion(c.Sort)
	if err != nil {
		crit = nav.SortByName
	}
	return nav.Options{
		WrapCursor: c.WrapCursor,
		ShowHidden: c.ShowHidden,
		Sort:       nav.SortOrder{Criterion: crit, Reverse: c.SortReverse},
	}
}

// ExecutorOptions returns the operation settings
func (c *Config) ExecutorOptions() operation.Options {
	policy, err := operation.ParsePolicy(c.ConflictPolicy)
	if err != nil {
		policy = operation.PolicyPrompt
	}
	return operation.Options{
		Policy:        policy,
		ConfirmDelete: c.ConfirmDelete,
		Commands:      c.ExternalCommands,
		Editor:        c.EditorCommand,
	}
}
