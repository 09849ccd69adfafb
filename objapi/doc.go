// Package objapi is the wire layer: typed Go values for every JSON resource the
// remote API exchanges, decoded by discriminator lookup rather than reflection on
// field presence.
//
// Every closed union (property values, formula results, rollup objects, rich text
// spans, users, files, parents, property-type descriptors) is a Go interface with a
// Registry mapping its discriminator string to a constructor. Variants store their
// payload under a field named exactly like their tag, which is the convention the
// remote API uses on the wire.
package objapi
