package model

import "math/rand/v2"

// VisualSignatures is the fixed palette of handwriting styles a Gem can wear.
// The first entry is the default for records saved before signatures existed.
var VisualSignatures = []string{
	"Caveat",
	"Crimson Text",
	"Dancing Script",
	"Indie Flower",
	"Kalam",
	"Lora",
	"Merriweather",
	"Patrick Hand",
	"Playfair Display",
	"Shadows Into Light",
}

func DefaultVisualSignature() string {
	return VisualSignatures[0]
}

func IsVisualSignature(s string) bool {
	for _, sig := range VisualSignatures {
		if sig == s {
			return true
		}
	}
	return false
}

func RandomVisualSignature() string {
	return VisualSignatures[rand.IntN(len(VisualSignatures))]
}

// SignaturesExcept lists the palette without the given signature.
func SignaturesExcept(current string) []string {
	out := make([]string, 0, len(VisualSignatures))
	for _, sig := range VisualSignatures {
		if sig != current {
			out = append(out, sig)
		}
	}
	return out
}
