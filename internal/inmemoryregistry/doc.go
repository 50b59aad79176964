// Package inmemoryregistry provides a thread-safe, in-memory implementation
// of the registry.Registry interface, sized for a single batch run.
package inmemoryregistry
