// Package ir provides the literal value model and canonical encoding
// shared by the query compiler.
//
// This package imports nothing internal. queryir uses Value for predicate
// operands, search renders physical requests into Object trees, and
// store/harness fingerprint those trees with MarshalCanonical.
//
// Key constraints:
//   - No float types: numbers are int64 so renders are byte-stable
//   - Canonical JSON follows RFC 8785 (UTF-16 key order, NFC strings)
//   - Fingerprints are domain separated (see hash.go)
package ir
