//go:build !devauth

package guard

// bypassGuards is false in every normal build.  The devauth build tag flips
// it (see bypass_dev.go); release artifacts are built without the tag, so
// the bypass is compiled out rather than merely switched off.
const bypassGuards = false
