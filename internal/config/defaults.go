package config

// Binding is one [[bindings]] entry. Mode is a mode name or "global";
// Action is an action name optionally followed by its argument. The action
// "unbind" removes a default binding.
type Binding struct {
	Mode        string `toml:"mode" mapstructure:"mode"`
	Keys        string `toml:"keys" mapstructure:"keys"`
	Action      string `toml:"action" mapstructure:"action"`
	Chain       bool   `toml:"chain,omitempty" mapstructure:"chain"`
	Description string `toml:"description,omitempty" mapstructure:"description"`
}

const unbind = "unbind"

func bind(mode, keys, act, desc string) Binding {
	return Binding{Mode: mode, Keys: keys, Action: act, Description: desc}
}

// DefaultBindings returns the built-in key map. Configured bindings are
// layered over it.
func DefaultBindings() []Binding {
	return []Binding{
		// everywhere
		bind("global", "<C-c>", "cancel_operation", "cancel running operations"),
		bind("global", "<F1>", "help", "show key bindings"),
		bind("global", "<C-q>", "quit", "quit"),

		// normal
		bind("normal", "j", "move_down", "down"),
		bind("normal", "<Down>", "move_down", "down"),
		bind("normal", "k", "move_up", "up"),
		bind("normal", "<Up>", "move_up", "up"),
		bind("normal", "gg", "move_top", "first entry"),
		bind("normal", "<Home>", "move_top", "first entry"),
		bind("normal", "G", "move_bottom", "last entry, or line N"),
		bind("normal", "<End>", "move_bottom", "last entry"),
		bind("normal", "<C-d>", "page_down", "page down"),
		bind("normal", "<PgDn>", "page_down", "page down"),
		bind("normal", "<C-u>", "page_up", "page up"),
		bind("normal", "<PgUp>", "page_up", "page up"),
		bind("normal", "l", "enter", "open directory or file"),
		bind("normal", "<Enter>", "enter", "open directory or file"),
		bind("normal", "<Right>", "enter", "open directory or file"),
		bind("normal", "h", "parent", "parent directory"),
		bind("normal", "<Left>", "parent", "parent directory"),
		bind("normal", "<BS>", "parent", "parent directory"),
		bind("normal", "<C-o>", "back", "previous directory"),
		bind("normal", "<C-r>", "refresh", "reload listing"),
		bind("normal", "<Space>", "toggle_select", "toggle selection"),
		bind("normal", "v", "change_mode visual", "visual selection"),
		bind("normal", "<C-a>", "select_all", "select all"),
		bind("normal", "<Esc>", "clear_selection", "clear selection"),
		bind("normal", "*", "command select", "select by pattern"),
		bind("normal", "m", "set_mark", "set mark"),
		bind("normal", "'", "jump_to_mark", "jump to mark"),
		bind("normal", "`", "jump_to_mark", "jump to mark"),
		bind("normal", "sn", "sort name", "sort by name"),
		bind("normal", "ss", "sort size", "sort by size"),
		bind("normal", "sm", "sort mtime", "sort by modification time"),
		bind("normal", "sk", "sort kind", "directories first"),
		bind("normal", "sr", "reverse_sort", "reverse sort"),
		bind("normal", "/", "search", "search"),
		bind("normal", "n", "search_next", "next match"),
		bind("normal", "f", "command filter", "filter by pattern"),
		bind("normal", "zh", "toggle_hidden", "show hidden files"),
		bind("normal", ".", "toggle_hidden", "show hidden files"),
		bind("normal", "yy", "copy", "copy"),
		bind("normal", "yp", "yank_path", "copy path to clipboard"),
		bind("normal", "dd", "cut", "cut"),
		bind("normal", "p", "paste", "paste"),
		bind("normal", "D", "delete", "delete"),
		bind("normal", "cw", "rename", "rename"),
		bind("normal", "<F2>", "rename", "rename"),
		bind("normal", "a", "create_file", "new file"),
		bind("normal", "A", "create_dir", "new directory"),
		bind("normal", "!", "command run", "run command on targets"),
		bind("normal", "o", "open", "open in editor"),
		bind("normal", "u", "undo", "undo last operation"),
		bind("normal", ":", "command", "command line"),
		bind("normal", "i", "preview", "preview file"),
		bind("normal", "?", "help", "show key bindings"),
		bind("normal", "q", "quit", "quit"),
		bind("normal", "Q", "force_quit", "quit without confirmation"),

		// visual
		bind("visual", "j", "move_down", "extend down"),
		bind("visual", "<Down>", "move_down", "extend down"),
		bind("visual", "k", "move_up", "extend up"),
		bind("visual", "<Up>", "move_up", "extend up"),
		bind("visual", "gg", "move_top", "extend to top"),
		bind("visual", "G", "move_bottom", "extend to bottom"),
		bind("visual", "<Space>", "toggle_select", "toggle selection"),
		bind("visual", "y", "copy", "copy selection"),
		bind("visual", "d", "cut", "cut selection"),
		bind("visual", "D", "delete", "delete selection"),
		bind("visual", "v", "change_mode normal", "leave visual mode"),
		bind("visual", "<Esc>", "change_mode normal", "leave visual mode"),

		// text entry
		bind("rename", "<Enter>", "submit", "apply"),
		bind("rename", "<Esc>", "cancel", "abandon"),
		bind("command", "<Enter>", "submit", "run"),
		bind("command", "<Esc>", "cancel", "abandon"),
		bind("search", "<Enter>", "submit", "search"),
		bind("search", "<Esc>", "cancel", "abandon"),

		// yes/no questions
		bind("confirm", "y", "confirm", "yes"),
		bind("confirm", "Y", "confirm", "yes"),
		bind("confirm", "n", "cancel", "no"),
		bind("confirm", "N", "cancel", "no"),
		bind("confirm", "<Esc>", "cancel", "no"),

		// destination conflicts
		bind("prompt", "o", "confirm overwrite", "overwrite"),
		bind("prompt", "O", "confirm overwrite all", "overwrite all"),
		bind("prompt", "s", "confirm skip", "skip"),
		bind("prompt", "S", "confirm skip all", "skip all"),
		bind("prompt", "r", "confirm rename", "keep both"),
		bind("prompt", "R", "confirm rename all", "keep both for all"),
		bind("prompt", "a", "cancel", "abort"),
		bind("prompt", "<Esc>", "cancel", "abort"),
	}
}
