// Package selector implements the image rotation algorithm.
//
// The selector picks one image at random from the catalog for each
// request. An image is a candidate when all of these hold:
//   - it has shows left in its quota
//   - no categories were requested, or it shares at least one category
//     with the request
//   - it is not in the recency window of recently shown images
//
// # Quota reset
//
// When no image qualifies, every image with an exhausted quota is given one
// more show and the candidates are computed again. The recency window is
// not relaxed. If there is still nothing to show, Select returns
// ErrNoEligibleImage.
//
// # Recency window
//
// The window holds the URLs of the last five shown images (configurable)
// and evicts the oldest first.
//
// # Usage
//
//	sl := selector.NewSelector(cat, log, metrics)
//	img, err := sl.Select(ctx, catalog.NewCategories("cat"))
//	if errors.Is(err, selector.ErrNoEligibleImage) {
//	    // render "no image available"
//	}
package selector
