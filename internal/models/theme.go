package models

// Theme is the color and button styling palette.
type Theme struct {
	Primary                   string  `json:"primary"`
	Secondary                 string  `json:"secondary"`
	Accent                    string  `json:"accent"`
	TextPrimary               string  `json:"textPrimary"`
	TextSecondary             string  `json:"textSecondary"`
	Background                string  `json:"background"`
	HeaderBg                  string  `json:"headerBg,omitempty"`
	HeaderBgOpacity           float64 `json:"headerBgOpacity,omitempty"`
	HeaderText                string  `json:"headerText,omitempty"`
	BookNowButtonBg           string  `json:"bookNowButtonBg,omitempty"`
	BookNowButtonText         string  `json:"bookNowButtonText,omitempty"`
	BookNowButtonBorderColor  string  `json:"bookNowButtonBorderColor,omitempty"`
	BookNowButtonBorderWidth  float64 `json:"bookNowButtonBorderWidth"`
	BookNowButtonBorderRadius float64 `json:"bookNowButtonBorderRadius"`
}

// DefaultTheme is the built-in light palette.
var DefaultTheme = Theme{
	Primary:                   "#D4C1C2",
	Secondary:                 "#F7F5F5",
	Accent:                    "#B0A0A1",
	TextPrimary:               "#2d2d2d",
	TextSecondary:             "#6e6e6e",
	Background:                "#FFFFFF",
	HeaderBg:                  "#FFFFFF",
	HeaderBgOpacity:           0.5,
	HeaderText:                "#2d2d2d",
	BookNowButtonBg:           "#D4C1C2",
	BookNowButtonText:         "#2d2d2d",
	BookNowButtonBorderColor:  "#D4C1C2",
	BookNowButtonBorderWidth:  0,
	BookNowButtonBorderRadius: 8,
}

// DarkTheme replaces the document theme while dark mode is on. It is never persisted.
var DarkTheme = Theme{
	Primary:                   "#BDBDBD",
	Secondary:                 "#212121",
	Accent:                    "#757575",
	TextPrimary:               "#FFFFFF",
	TextSecondary:             "#E0E0E0",
	Background:                "#121212",
	HeaderBg:                  "#27272a",
	HeaderBgOpacity:           0.5,
	HeaderText:                "#FFFFFF",
	BookNowButtonBg:           "#BDBDBD",
	BookNowButtonText:         "#121212",
	BookNowButtonBorderColor:  "#BDBDBD",
	BookNowButtonBorderWidth:  0,
	BookNowButtonBorderRadius: 8,
}
