// Package registry maps provider ids to adapter constructors and binds
// connected accounts to adapters.
//
// The maps are built once by New and never change afterwards. Token checks
// and capability lookups happen before any adapter is constructed, so a
// misconfigured account never reaches the network.
package registry
