// Package harness runs conformance scenarios against compiled search
// requests.
//
// A scenario names a query in a CUE definitions directory, compiles it
// with an optional caller filter and page size, and asserts on the
// rendered request.
//
// # Scenario Format
//
//	name: recent_tagged
//	description: "Recent books tagged go, capped by the query limit"
//	specs: ../defs          # directory, relative to the scenario file
//	query: recent
//	size: 10                # optional page size
//	filter:                 # optional clause in backend form
//	  term: {tenant: acme}
//	assertions:
//	  - type: equals
//	    path: /size
//	    value: 5
//	  - type: absent
//	    path: /aggregations
//
// A scenario may instead declare expect_error with a substring of the
// expected compile or validation error; assertions are then optional.
//
// # Assertion Types
//
//   - equals: the value at path equals value
//   - exists: path is present
//   - absent: path is not present
//   - length: the array or object at path has count entries
//   - fingerprint: the request fingerprint equals value
//   - warning: a validation warning contains value
//
// Paths are JSON pointers (RFC 6901) into the rendered request.
//
// # Golden Files
//
// RunWithGolden and CompareGolden compare the canonical JSON snapshot of
// a scenario (name, fingerprint, request) against a golden file, so any
// change to the rendered request shows up as a diff.
package harness
