package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "filephile/internal/errors"
	"filephile/internal/input/action"
	"filephile/internal/input/binding"
	"filephile/internal/input/key"
	"filephile/internal/nav"
	"filephile/internal/operation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "absent.toml"), nil)
	cfg, err := svc.Load()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.SequenceTimeout())
	assert.True(t, cfg.ConfirmDelete)
	assert.Equal(t, "prompt", cfg.ConflictPolicy)
	assert.Equal(t, "kind", cfg.Sort)
	assert.Empty(t, cfg.Bindings)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
sequence_timeout_ms = 400
wrap_cursor = true
sort = "size"
sort_reverse = true
conflict_policy = "rename"

[external_commands]
archive = "tar czf {cwd}/out.tgz {}"

[[bindings]]
mode = "normal"
keys = "<C-x>"
action = "delete"

[[bindings]]
mode = "global"
keys = "<F5>"
action = "refresh"
`)
	cfg, err := NewService(path, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, 400*time.Millisecond, cfg.SequenceTimeout())
	assert.True(t, cfg.WrapCursor)
	assert.True(t, cfg.ConfirmQuit, "unset keys keep their defaults")
	assert.Equal(t, "tar czf {cwd}/out.tgz {}", cfg.ExternalCommands["archive"])
	require.Len(t, cfg.Bindings, 2)
	assert.Equal(t, Binding{Mode: "normal", Keys: "<C-x>", Action: "delete"}, cfg.Bindings[0])

	opts := cfg.NavOptions()
	assert.Equal(t, nav.SortOrder{Criterion: nav.SortBySize, Reverse: true}, opts.Sort)
	assert.True(t, opts.WrapCursor)
	assert.Equal(t, operation.PolicyRename, cfg.ExecutorOptions().Policy)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("FILEPHILE_SHOW_HIDDEN", "true")
	t.Setenv("FILEPHILE_CONFLICT_POLICY", "skip")
	path := writeConfig(t, `conflict_policy = "overwrite"`)

	cfg, err := NewService(path, nil).Load()
	require.NoError(t, err)
	assert.True(t, cfg.ShowHidden)
	assert.Equal(t, "skip", cfg.ConflictPolicy)
}

func TestInvalidConfigIsConfigError(t *testing.T) {
	tests := []struct {
		name    string
		content string
		param   string
		msg     string
	}{
		{"unknown action", "[[bindings]]\nmode = \"normal\"\nkeys = \"x\"\naction = \"move_dwn\"", "bindings[0]", `did you mean "move_down"`},
		{"unknown mode", "[[bindings]]\nmode = \"nromal\"\nkeys = \"x\"\naction = \"quit\"", "bindings[0]", `did you mean "normal"`},
		{"bad keys", "[[bindings]]\nmode = \"normal\"\nkeys = \"<C-x\"\naction = \"quit\"", "bindings[0]", "unmatched bracket"},
		{"bad policy", `conflict_policy = "merge"`, "conflict_policy", "unknown conflict policy"},
		{"bad sort", `sort = "colour"`, "sort", ""},
		{"bad timeout", `sequence_timeout_ms = 0`, "sequence_timeout_ms", ""},
		{"syntax", `sort = `, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := NewService(path, nil).Load()
			require.Error(t, err)
			assert.True(t, apperrors.IsConfigInvalid(err))
			var cfgErr *apperrors.ConfigError
			require.True(t, apperrors.As(err, &cfgErr))
			if tt.param != "" {
				assert.Equal(t, tt.param, cfgErr.Param())
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestLoadFromPathMissing(t *testing.T) {
	_, err := NewService("", nil).LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, apperrors.IsConfigInvalid(err))
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	svc := NewService(path, nil)

	cfg := DefaultConfig()
	cfg.ScrollOff = 7
	cfg.ExternalCommands["diff"] = "vimdiff {}"
	require.NoError(t, svc.Save(cfg))

	loaded, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.ScrollOff)
	assert.Equal(t, "vimdiff {}", loaded.ExternalCommands["diff"])
	assert.Equal(t, len(DefaultBindings()), len(loaded.Bindings))

	_, err = BuildTable(loaded)
	assert.NoError(t, err)
}

func TestDefaultBindingsBuild(t *testing.T) {
	for _, strict := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.StrictPrefixes = strict
		require.NoError(t, Validate(cfg))
		table, err := BuildTable(cfg)
		require.NoError(t, err)
		assert.NotEmpty(t, table.Bindings(action.ModeNormal))
	}
}

func resolveAll(table *binding.Table, mode action.Mode, spec string) binding.Result {
	var res binding.Result
	for _, ev := range key.MustParseSequence(spec) {
		res = table.Resolve(mode, ev)
	}
	return res
}

func TestBuildTableLayersOverDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bindings = []Binding{
		{Mode: "normal", Keys: "j", Action: "move_up"},
		{Mode: "normal", Keys: "D", Action: "unbind"},
		{Mode: "normal", Keys: "gh", Action: "command cd ~"},
	}
	table, err := BuildTable(cfg)
	require.NoError(t, err)

	res := resolveAll(table, action.ModeNormal, "j")
	assert.Equal(t, action.MoveUp, res.Action.Kind)

	res = resolveAll(table, action.ModeNormal, "D")
	assert.Equal(t, binding.NoMatch, res.Status)

	res = resolveAll(table, action.ModeNormal, "gh")
	assert.Equal(t, action.Command, res.Action.Kind)
	assert.Equal(t, "cd ~", res.Action.Arg)

	res = resolveAll(table, action.ModeNormal, "gg")
	assert.Equal(t, action.MoveTop, res.Action.Kind)

	// global bindings apply in every mode
	res = resolveAll(table, action.ModeRename, "<C-c>")
	assert.Equal(t, action.CancelOperation, res.Action.Kind)
}

func TestBuildTableStrictPrefixConflict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictPrefixes = true
	cfg.Bindings = []Binding{{Mode: "normal", Keys: "g", Action: "refresh"}}

	_, err := BuildTable(cfg)
	require.Error(t, err)
	var cfgErr *apperrors.ConfigError
	require.True(t, apperrors.As(err, &cfgErr))
	assert.Equal(t, "strict_prefixes", cfgErr.Param())

	cfg.Bindings[0].Chain = true
	_, err = BuildTable(cfg)
	assert.NoError(t, err)
}

func TestEncodeWritesBindingArray(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bindings = []Binding{{Mode: "normal", Keys: "x", Action: "delete"}}
	data, err := Encode(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[bindings]]")
	assert.Contains(t, string(data), "sequence_timeout_ms = 1000")
}
