// internal/workers/reference/load-reference-data/models.go
package loadreferencedata

import "agency-workers/internal/agencyapi"

type Input struct {
	// Refresh drops the cached copies before loading.
	Refresh bool `json:"refresh,omitempty"`
}

type Output struct {
	ReferenceData *agencyapi.ReferenceData `json:"referenceData"`
	Counts        map[string]int           `json:"referenceCounts"`
}
