// Package internalcheck holds static policy tests over the cb-rsa-go sources.
//
// The tests load the library packages with golang.org/x/tools/go/packages and
// walk their syntax trees:
//
//   - no %x formatting in format strings, so secrets never reach logs or
//     errors in hex
//   - no Int64/Uint64 narrowing of *big.Int in the arithmetic packages
//   - no == or != between *big.Int operands, which compares pointers
//
// # Internal Use Only
//
// This package has no API. It exists so `go test ./...` enforces the policies.
package internalcheck
