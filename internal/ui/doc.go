// Package ui provides the shared terminal styling for aegis: the colour
// palette, status symbols, sparklines, tables and the spinner frames used by
// both the dashboard and the one-shot commands.
//
// Colors are ANSI codes so they degrade on limited terminals:
//
//	ColorSuccess   (green)  - successful operations, healthy utilization
//	ColorError     (red)    - failures, critical utilization
//	ColorWarning   (yellow) - warnings, elevated utilization
//	ColorInfo      (cyan)   - informational messages
//	ColorMuted     (gray)   - secondary text, timing info
//	ColorSecondary (blue)   - in-progress indicators
//
// Use DisableColors() to switch to monochrome output (for --no-color).
package ui
