package extract

import "github.com/kneesnap/onstream-tape/blockmap/gapfinder"

// Option configures a Run call, following the same functional-option
// shape the teacher uses for Superblock construction.
type Option func(*config) error

type config struct {
	onGap func(gapfinder.Gap)
}

func defaultConfig() *config {
	return &config{}
}

// OnGap registers a callback invoked once per physical gap found before
// extraction begins.
func OnGap(fn func(gapfinder.Gap)) Option {
	return func(c *config) error {
		c.onGap = fn
		return nil
	}
}
