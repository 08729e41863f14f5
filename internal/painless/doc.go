// Package painless translates query expressions into painless scripts.
//
// Field reads use doc values (doc['f'].value). Literals never appear in
// the script source: each one becomes a parameter params.vN so that
// equal scripts with different constants share a compiled form on the
// backend.
package painless
