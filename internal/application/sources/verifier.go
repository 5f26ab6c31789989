// Package sources decides whether a claimed material source is on the recognized list.
package sources

import "strings"

var recognized = []string{
	"EcoCement Co.",
	"NatureBricks",
	"EarthInnovations",
	"PlasticCycle",
	"Sustainable Works",
	"GreenBuild Ltd.",
	"certified-supplier-a",
	"eco-source-b",
	"govt-agency-c",
}

var recognizedSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(recognized))
	for _, s := range recognized {
		set[normalize(s)] = struct{}{}
	}
	return set
}()

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsVerified reports whether source matches a recognized identifier after trimming
// surrounding whitespace and ignoring case. There is no fuzzy matching.
func IsVerified(source string) bool {
	_, ok := recognizedSet[normalize(source)]
	return ok
}

// Recognized returns the canonical spelling of every recognized source.
func Recognized() []string {
	out := make([]string, len(recognized))
	copy(out, recognized)
	return out
}

// Verifier adapts IsVerified to the materials service.
type Verifier struct{}

func (Verifier) IsVerified(source string) bool {
	return IsVerified(source)
}
