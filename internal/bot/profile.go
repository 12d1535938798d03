package bot

import (
	"context"

	"github.com/stratushq/stratus/internal/nlu"
	"github.com/stratushq/stratus/internal/profile"
)

// Entity aliases the recognizer may emit for each profile field. Pattern
// matches arrive under the _patternAny variants.
var (
	nameEntities = []string{"userName", "userName_patternAny"}
	cityEntities = []string{"userCity", "userCity_patternAny"}
)

// updateProfile stores recognized name and city entities on the user's
// profile. When several aliases carry values the last one wins. Turns
// without any profile entity leave the stored profile untouched.
func (b *Bot) updateProfile(ctx context.Context, prof *profile.Accessor, result *nlu.Result) error {
	if !hasProfileEntities(result) {
		return nil
	}

	p, err := prof.Get(ctx)
	if err != nil {
		return err
	}

	for _, alias := range nameEntities {
		if values := result.Entities[alias]; len(values) > 0 {
			p.Name = profile.Capitalize(values[0])
		}
	}
	for _, alias := range cityEntities {
		if values := result.Entities[alias]; len(values) > 0 {
			p.City = profile.Capitalize(values[0])
		}
	}

	return prof.Set(p)
}

func hasProfileEntities(result *nlu.Result) bool {
	for _, alias := range nameEntities {
		if len(result.Entities[alias]) > 0 {
			return true
		}
	}
	for _, alias := range cityEntities {
		if len(result.Entities[alias]) > 0 {
			return true
		}
	}
	return false
}
