// Package domain defines the core business entities for sitenav.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Conversation: A website URL paired with its message history and cached analysis
//   - Message: One user or assistant turn within a conversation
//   - Analysis: The structured description of a website's sections and navigation
//   - User: The identity returned by the auth context
//
// URL intake (NormalizeURL) and the deterministic rendering of analysis
// messages also live here, since both are pure functions of domain values.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
