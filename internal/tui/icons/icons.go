// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("FORMATIONSGEST_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	for _, t := range []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"} {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	return os.Getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	// Resources
	Formation   = Icon{"󰑴", "◆"} // nf-md-school
	Inscription = Icon{"󰏫", "✎"} // nf-md-pencil
	Formateur   = Icon{"󰀉", "●"} // nf-md-account_tie
	Planning    = Icon{"󰃭", "▦"} // nf-md-calendar
	Entreprise  = Icon{"󰒋", "▣"} // nf-md-office_building
	Candidature = Icon{"󰈙", "□"} // nf-md-file_document
	Evaluation  = Icon{"󰓎", "★"} // nf-md-star
	User        = Icon{"󰀄", "☺"} // nf-md-account

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	// Actions
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Search  = Icon{"󰍉", "⌕"} // nf-md-magnify
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Logout  = Icon{"󰍃", "⏏"} // nf-md-logout
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app
	Lock    = Icon{"󰌾", "⚿"} // nf-md-lock

	// Application
	App       = Icon{"󰑴", "◈"} // nf-md-school
	Dashboard = Icon{"󰕮", "▤"} // nf-md-view_dashboard
)
