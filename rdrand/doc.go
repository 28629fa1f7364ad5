// Package rdrand exposes the x86-64 RDRAND instruction as a uniform random
// source. Engine satisfies math/rand/v2.Source, math/rand.Source64 and
// io.Reader, so it can be handed to distributions, shuffles and samplers that
// accept any of those.
//
// The package only builds for amd64 and panics during initialisation if the
// CPU does not implement RDRAND. There is no fallback source.
package rdrand
