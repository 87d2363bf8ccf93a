// File: internal/garage/esdoc.go
package garage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ToElasticsearchDoc converts a Garage to its Elasticsearch document
// representation for the garages index.
func ToElasticsearchDoc(g *Garage) (string, error) {
	if g == nil {
		return "", errors.New("garage cannot be nil")
	}

	doc := map[string]interface{}{
		"name":        g.Name,
		"slug":        g.Slug,
		"description": g.Description,
		"city":        g.City,
		"address":     g.Address,
		"specialties": []string(g.Specialties),
		"rating":      g.Rating,
		"owner_id":    g.OwnerID.String(),
		"created_at":  g.CreatedAt,
		"updated_at":  g.UpdatedAt,
	}

	if g.Latitude != nil && g.Longitude != nil {
		doc["location"] = map[string]float64{
			"lat": *g.Latitude,
			"lon": *g.Longitude,
		}
	} else {
		doc["location"] = nil
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling garage to JSON for ES: %w", err)
	}
	return string(docBytes), nil
}
