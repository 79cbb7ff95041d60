// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the AGRINOVA TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The detected background can be overridden by the ui.theme
setting:

	theme := styles.NewTheme(cfg.UI.Theme) // "auto", "dark" or "light"
	box := theme.PanelFocused.Render(content)

# Palette

  - Leaf - brand, titles, focus ring
  - Wheat - key hints, prices
  - Sky - weather and chatbot replies
  - Soil - the user's chat entries
  - Rose / Emerald / Amber - error, success, pending

Every colored state also carries an ASCII marker from StatusIndicators.
*/
package styles
