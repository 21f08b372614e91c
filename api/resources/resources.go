// FilePath: api/resources/resources.go
package resources

import (
	"github.com/blitt001/ha-opensensemap/internal/coordinator"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Status *StatusHandlers
}

// NewResources creates a new Resources instance
func NewResources(coord *coordinator.Coordinator) *Resources {
	return &Resources{
		Status: &StatusHandlers{coordinator: coord},
	}
}
