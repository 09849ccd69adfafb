// Package model holds the user-facing wrappers over the wire objects of package
// objapi: rich text, users, options, files, column descriptors, page schemas with
// their relation wiring, pages, databases and tabular views.
//
// Wrappers own the wire object they wrap and never reference a session; related
// objects are referred to by id.
package model
