/*
Package ports defines the driven ports (interfaces) for the Verdant catalog.

These interfaces decouple the catalog core from external implementations, allowing
it to work with various storage backends and text-generation providers.

# Key Interfaces

  - PlantRepository: The persistence adapter (list, create, update, delete, enrich).
  - Storage: A key/value document store used by durable repositories.
  - Enricher: Answers "how often should this plant be watered?".
  - TextGenerator: A single prompt-to-text call to a third-party model.
*/
package ports
