package format

import "strings"

// ColorScheme is the parsed GREP_COLORS (or legacy GREP_COLOR) table: one
// raw SGR parameter string per highlight class, exactly as grep's own
// environment contract defines them. A class left unset in the
// environment keeps its default.
type ColorScheme struct {
	SelectedLine string // sl
	Context      string // cx
	FileName     string // fn
	LineNumber   string // ln
	ColumnNumber string // cn
	ByteOffset   string // bo
	Separator    string // se
	Match        string // ms (selected-line match) / mt (both)
	ContextMatch string // mc
}

// DefaultColorScheme mirrors GNU grep's built-in default, the baseline
// every mature grep superset falls back to when GREP_COLORS is unset.
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		SelectedLine: "",
		Context:      "",
		FileName:     "35",
		LineNumber:   "32",
		ColumnNumber: "32",
		ByteOffset:   "32",
		Separator:    "36",
		Match:        "01;31",
		ContextMatch: "01;31",
	}
}

// ParseGrepColors overlays env (GREP_COLORS syntax: "cap=params:cap=params")
// onto the default scheme. GREP_COLOR, the older single-value variable,
// only ever set the match color and is handled by ParseGrepColor.
func ParseGrepColors(env string) ColorScheme {
	scheme := DefaultColorScheme()
	if env == "" {
		return scheme
	}
	for _, entry := range strings.Split(env, ":") {
		cap, params, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		switch cap {
		case "sl":
			scheme.SelectedLine = params
		case "cx":
			scheme.Context = params
		case "fn":
			scheme.FileName = params
		case "ln":
			scheme.LineNumber = params
		case "cn":
			scheme.ColumnNumber = params
		case "bo":
			scheme.ByteOffset = params
		case "se":
			scheme.Separator = params
		case "mt":
			scheme.Match = params
			scheme.ContextMatch = params
		case "ms":
			scheme.Match = params
		case "mc":
			scheme.ContextMatch = params
		}
	}
	return scheme
}

// ParseGrepColor applies the legacy GREP_COLOR variable, which is just
// the match SGR parameter on its own.
func ParseGrepColor(scheme ColorScheme, env string) ColorScheme {
	if env != "" {
		scheme.Match = env
		scheme.ContextMatch = env
	}
	return scheme
}

// wrap surrounds s with code's SGR escape and a reset, or returns s
// unchanged if code is empty (grep's convention for "no styling").
func wrap(code, s string) string {
	if code == "" {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}
