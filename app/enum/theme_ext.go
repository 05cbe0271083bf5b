package enum

// Toggle returns the opposite theme. Dark flips to light, anything else
// flips to dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
