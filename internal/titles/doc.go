// Package titles turns noisy catalog titles into search-friendly strings.
//
// Normalize strips cataloguing annotations (leading ~Tag~ blocks, bracketed
// subset and dump markers, parenthesized region, version, storefront, and
// disc markers), moves a trailing ", The" to the front, folds a small fixed
// set of accented letters, and collapses whitespace. SearchVariants expands a
// normalized title into the ordered list of terms a lookup should try.
package titles
