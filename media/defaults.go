package media

import (
	"fmt"
	"math/rand"
)

// Defaults selects the shared placeholder images used when a user or post
// has no uploaded image. The random source is injectable so tests can pin
// the selection. Default references carry no storage key and must never be
// deleted from the store.
type Defaults struct {
	baseURL    string
	photoCount int
	rnd        *rand.Rand
}

// NewDefaults builds a Defaults picker serving photoCount rotating post
// photos from baseURL. A nil rnd falls back to the global source.
func NewDefaults(baseURL string, photoCount int, rnd *rand.Rand) *Defaults {
	if photoCount < 1 {
		photoCount = 1
	}
	return &Defaults{baseURL: baseURL, photoCount: photoCount, rnd: rnd}
}

// PostPhoto picks one of the rotating default post photos.
func (d *Defaults) PostPhoto() Reference {
	n := 1
	if d.photoCount > 1 {
		if d.rnd != nil {
			n = d.rnd.Intn(d.photoCount) + 1
		} else {
			n = rand.Intn(d.photoCount) + 1
		}
	}
	return Reference{URL: fmt.Sprintf("%s/defaults/default-photo-%d.webp", d.baseURL, n)}
}

// Avatar returns the shared default avatar.
func (d *Defaults) Avatar() Reference {
	return Reference{URL: d.baseURL + "/defaults/default-avatar-1.webp"}
}
