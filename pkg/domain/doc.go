/*
Package domain contains the core domain models of the Verdant plant catalog.

It defines the catalog entities, the store state and the events that drive it. This
package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Plant: An identified plant type with a watering period in days.
  - State: The runtime snapshot of the catalog (items, in-flight flags, last error).
  - Event: A fact fed to the transition function (requested, succeeded, failed).
  - StateDiff: A partial update between two states, serialized for streaming clients.
*/
package domain
