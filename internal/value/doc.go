// Package value provides the constrained payload representation for the
// context store.
//
// This package contains type definitions and serialization only. All other
// internal packages import value; value imports nothing internal. This keeps
// it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Value is a sealed variant: Null, Bool, Int, Float, String, Array, Object
//   - "Is representable" is a total conversion (FromGo), not a runtime probe
//   - Serialization is deterministic: sorted object keys, NFC-normalized
//     strings, no HTML escaping - so size accounting and golden exports are
//     stable across runs
package value
