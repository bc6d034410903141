// Package provider defines the normalized calendar and task model shared by
// every vendor adapter, the capability interfaces the adapters implement, and
// the typed errors they return.
//
// No other package may depend on vendor payload shapes. Adapters translate
// at their boundary and hand back only the types declared here.
package provider
