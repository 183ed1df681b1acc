package domain

import "strings"

// blockedWords holds lowercased single words rejected in user-visible text.
// English plus common Filipino profanity, matched per token so ordinary words
// that merely contain a blocked substring pass.
var blockedWords = map[string]struct{}{}

// blockedPhrases holds multi-word insults matched as substrings of the
// normalized text.
var blockedPhrases = []string{
	"putang ina", "gago ka", "bobo ka", "tanga ka", "sira ulo",
	"walang hiya", "fuck you", "piss off", "screw you",
}

func init() {
	for _, w := range []string{
		"gago", "gaga", "gagi", "bobo", "tanga", "tarantado", "ulol",
		"pakshet", "puta", "putangina", "punyeta", "inutil", "buwisit",
		"bwisit", "kupal", "hindot", "engot", "ungas", "gunggong", "lintik",
		"pakyu", "leche", "hudas", "siraulo", "tae", "pokpok", "shunga",
		"yawa", "pisti", "demonyo", "bastos", "hayop", "hayup", "burat",
		"kantot", "puki", "titi", "fuck", "fucking", "shit", "shitty",
		"asshole", "bitch", "bastard", "cunt", "dick", "prick", "douchebag",
		"dumbass", "jackass", "moron", "idiot", "retard", "twat", "wanker",
	} {
		blockedWords[w] = struct{}{}
	}
}

// Profane reports whether the text contains blocked language. Input is
// rejected before any write is attempted; the caller shows a message and no
// state changes.
func Profane(text string) bool {
	normalized := strings.ToLower(text)
	for _, phrase := range blockedPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}

	for _, token := range strings.FieldsFunc(normalized, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if _, ok := blockedWords[token]; ok {
			return true
		}
	}
	return false
}

// MatchesSearch reports whether an aid post matches a case-insensitive search
// term over its title, location, and offer type. An empty term matches all.
func MatchesSearch(p AidPost, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Location), term) ||
		strings.Contains(strings.ToLower(string(p.OfferType)), term)
}
