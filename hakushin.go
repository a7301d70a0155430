// Package hakushin provides shared types for the Hakush.in game-data API
// clients: the supported games and response languages, plus the error
// taxonomy every fetch surface uses.
package hakushin

// Game identifies a game track on the Hakush.in API. The value doubles as
// the path segment in API URLs.
type Game string

const (
	// GameGI is Genshin Impact.
	GameGI Game = "gi"
	// GameHSR is Honkai: Star Rail.
	GameHSR Game = "hsr"
	// GameZZZ is Zenless Zone Zero.
	GameZZZ Game = "zzz"
)

// Language is a response language supported by the API.
type Language string

const (
	LanguageEN Language = "en"
	LanguageZH Language = "zh"
	LanguageKO Language = "ko"
	LanguageJA Language = "ja"
)

// hsrAPILang maps a Language to the alias the HSR track uses in URL paths.
// The HSR endpoints use jp/kr/cn rather than the ISO codes.
var hsrAPILang = map[Language]string{
	LanguageEN: "en",
	LanguageJA: "jp",
	LanguageKO: "kr",
	LanguageZH: "cn",
}

// APILang returns the path segment for lang on the given game track.
// Unknown languages fall back to English.
func APILang(game Game, lang Language) string {
	if game == GameHSR {
		if alias, ok := hsrAPILang[lang]; ok {
			return alias
		}
		return "en"
	}
	return string(lang)
}
