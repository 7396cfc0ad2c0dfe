package resource

import "fmt"

var Registry = map[string]*Resource{}

// InitRegistry loads all resource declarations from dir and validates them.
func InitRegistry(dir string) error {
	if err := LoadResourcesFromDir(dir); err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	if err := ValidateRegistry(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// ResetRegistry clears all registered resources and hooks. Test helper.
func ResetRegistry() {
	Registry = map[string]*Resource{}
	hookRegistry = map[string]*Hooks{}
}
