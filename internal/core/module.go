package core

import "strings"

// ModuleID is the namespaced identifier of a module, e.g. "transport.bridge".
// The part before the first dot is the namespace.
type ModuleID string

// Namespace returns the part of the ID before the first dot.
func (id ModuleID) Namespace() string {
	ns, _, _ := strings.Cut(string(id), ".")
	return ns
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	ID  ModuleID
	New func() Module
}

// Module is implemented by every relaybot module.
type Module interface {
	ModuleInfo() ModuleInfo
}
