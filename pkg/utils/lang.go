package utils

import (
	"github.com/abadojack/whatlanggo"
)

var whatLangOpts = whatlanggo.Options{
	Whitelist: map[whatlanggo.Lang]bool{
		whatlanggo.Eng: true,
		whatlanggo.Deu: true,
		whatlanggo.Fra: true,
		whatlanggo.Spa: true,
		whatlanggo.Cmn: true,
	},
}

// WhatLangTag guesses a BCP-47 style language tag for streaming session
// defaults. Falls back to "en" when detection is inconclusive.
func WhatLangTag(query string) string {
	info := whatlanggo.DetectWithOptions(query, whatLangOpts)
	if !info.IsReliable() {
		return "en"
	}

	switch info.Lang {
	case whatlanggo.Deu:
		return "de"
	case whatlanggo.Fra:
		return "fr"
	case whatlanggo.Spa:
		return "es"
	case whatlanggo.Cmn:
		return "zh"
	default:
		return "en"
	}
}
