// Package middleware decorates persistence ports with cross-cutting behavior:
// metrics and logging around a PlantRepository, encryption at rest around a Storage.
package middleware

import "github.com/aretw0/verdant/pkg/ports"

// Middleware allows wrapping a PlantRepository to add behavior.
type Middleware func(ports.PlantRepository) ports.PlantRepository

// StorageMiddleware allows wrapping a Storage to add behavior.
type StorageMiddleware func(ports.Storage) ports.Storage

// Chain wraps repo so that the first middleware is the outermost.
func Chain(repo ports.PlantRepository, mws ...Middleware) ports.PlantRepository {
	for i := len(mws) - 1; i >= 0; i-- {
		repo = mws[i](repo)
	}
	return repo
}
