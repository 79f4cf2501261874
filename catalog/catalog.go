// Package catalog holds the in-memory collection of images that can be
// served, together with their remaining display quotas.
//
// A Catalog is not safe for concurrent use; the selector serializes all
// access to it.
package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// ErrQuotaExhausted is returned by Consume when the image has no shows left.
var ErrQuotaExhausted = errors.New("image quota exhausted")

// Categories is an unordered set of category tags. Tags are matched
// literally; no case folding or trimming is applied.
type Categories map[string]struct{}

// NewCategories builds a set from the given tags, ignoring empty strings.
func NewCategories(tags ...string) Categories {
	c := make(Categories, len(tags))
	for _, t := range tags {
		if len(t) == 0 {
			continue
		}
		c[t] = struct{}{}
	}
	return c
}

// RequestCategories builds the set a caller asked for. Tags are kept as
// given, so an empty tag stays in the set and matches no image.
func RequestCategories(tags ...string) Categories {
	c := make(Categories, len(tags))
	for _, t := range tags {
		c[t] = struct{}{}
	}
	return c
}

func (c Categories) Contains(tag string) bool {
	_, ok := c[tag]
	return ok
}

// Intersects reports if the two sets share at least one tag.
func (c Categories) Intersects(other Categories) bool {
	small, large := c, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for t := range small {
		if large.Contains(t) {
			return true
		}
	}
	return false
}

// Sorted returns the tags in lexical order.
func (c Categories) Sorted() []string {
	r := make([]string, 0, len(c))
	for t := range c {
		r = append(r, t)
	}
	slices.Sort(r)
	return r
}

func (c Categories) clone() Categories {
	r := make(Categories, len(c))
	for t := range c {
		r[t] = struct{}{}
	}
	return r
}

// Image is one displayable image and its remaining quota.
type Image struct {
	URL        string
	ShowsLeft  int
	Categories Categories
}

// Consume uses one show from the quota.
func (img *Image) Consume() error {
	if img.ShowsLeft <= 0 {
		return fmt.Errorf("%s: %w", img.URL, ErrQuotaExhausted)
	}
	img.ShowsLeft--
	return nil
}

// Clone returns a copy that shares no state with the catalog.
func (img *Image) Clone() Image {
	return Image{
		URL:        img.URL,
		ShowsLeft:  img.ShowsLeft,
		Categories: img.Categories.clone(),
	}
}

// Catalog is the ordered list of images loaded at startup. Images are
// never added or removed after the catalog is built; only their quotas
// change.
type Catalog struct {
	images []*Image
}

// New returns a catalog holding copies of the given images.
func New(images ...Image) *Catalog {
	c := &Catalog{images: make([]*Image, 0, len(images))}
	for i := range images {
		img := images[i].Clone()
		if img.Categories == nil {
			img.Categories = Categories{}
		}
		c.images = append(c.images, &img)
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.images)
}

// Filter returns the images matching fn. The returned pointers refer to
// the catalog's own records.
func (c *Catalog) Filter(fn func(*Image) bool) []*Image {
	r := []*Image{}
	for _, img := range c.images {
		if fn(img) {
			r = append(r, img)
		}
	}
	return r
}

// Get returns the record for url, or nil.
func (c *Catalog) Get(url string) *Image {
	for _, img := range c.images {
		if img.URL == url {
			return img
		}
	}
	return nil
}

// ResetDepletedQuotas gives every image with no shows left a quota of one
// and returns how many images were reset.
func (c *Catalog) ResetDepletedQuotas() int {
	n := 0
	for _, img := range c.images {
		if img.ShowsLeft == 0 {
			img.ShowsLeft = 1
			n++
		}
	}
	return n
}

// Snapshot returns copies of all images in catalog order.
func (c *Catalog) Snapshot() []Image {
	r := make([]Image, 0, len(c.images))
	for _, img := range c.images {
		r = append(r, img.Clone())
	}
	return r
}

// CategoryCounts returns how many images carry each tag.
func (c *Catalog) CategoryCounts() map[string]int {
	r := map[string]int{}
	for _, img := range c.images {
		for t := range img.Categories {
			r[t]++
		}
	}
	return r
}
