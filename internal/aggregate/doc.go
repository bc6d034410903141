// Package aggregate fans calendar and task reads out over every account a
// user has connected and merges the results.
//
// Each account, and each calendar within it, is fetched on its own
// goroutine. A branch that fails is logged, counted and contributes an
// empty result; it never fails its siblings or the merged response.
// Merged events are ordered by start instant with a stable sort.
//
// Writes target exactly one account and return its errors unchanged.
package aggregate
