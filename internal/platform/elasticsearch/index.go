// File: internal/platform/elasticsearch/index.go
package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const GaragesIndexName = "garages"

// defineGaragesMapping returns the JSON string for the garages index mapping.
func defineGaragesMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"name":        map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
				"slug":        map[string]interface{}{"type": "keyword"},
				"description": map[string]interface{}{"type": "text"},
				"city":        map[string]interface{}{"type": "keyword"},
				"address":     map[string]interface{}{"type": "text"},
				"specialties": map[string]interface{}{"type": "keyword"},
				"rating":      map[string]interface{}{"type": "double"},
				"location":    map[string]interface{}{"type": "geo_point"},
				"owner_id":    map[string]interface{}{"type": "keyword"},
				"created_at":  map[string]interface{}{"type": "date"},
				"updated_at":  map[string]interface{}{"type": "date"},
			},
		},
	}
	mappingBytes, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling garages mapping to JSON: %w", err)
	}
	return string(mappingBytes), nil
}

// CreateGaragesIndexIfNotExists creates the garages index with the defined
// mapping if it does not already exist. A disabled client is a no-op.
func CreateGaragesIndexIfNotExists(client *ESClientWrapper, logger *zap.Logger) error {
	if !client.Enabled() {
		return nil
	}

	ctx := context.Background()
	log := logger.Named("elasticsearch_index_setup")

	req := esapi.IndicesExistsRequest{
		Index: []string{GaragesIndexName},
	}
	res, err := req.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error checking if garages index exists", zap.Error(err))
		return fmt.Errorf("error checking if garages index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Garages index already exists", zap.String("index_name", GaragesIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Error("Error checking if garages index exists, unexpected status",
			zap.String("status", res.Status()),
			zap.String("index_name", GaragesIndexName),
		)
		return fmt.Errorf("error checking if garages index exists: status %s", res.Status())
	}

	mappingJSON, err := defineGaragesMapping()
	if err != nil {
		log.Error("Failed to define garages mapping", zap.Error(err))
		return err
	}

	createReq := esapi.IndicesCreateRequest{
		Index: GaragesIndexName,
		Body:  strings.NewReader(mappingJSON),
	}
	createRes, err := createReq.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error creating garages index", zap.Error(err), zap.String("index_name", GaragesIndexName))
		return fmt.Errorf("error creating garages index %s: %w", GaragesIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		if err := json.NewDecoder(createRes.Body).Decode(&errorBody); err != nil {
			log.Error("Failed to parse garages index creation error response body", zap.Error(err), zap.String("status", createRes.Status()))
		} else {
			log.Error("Failed to create garages index",
				zap.String("status", createRes.Status()),
				zap.Any("error_details", errorBody),
				zap.String("index_name", GaragesIndexName),
			)
		}
		return fmt.Errorf("failed to create garages index %s: status %s", GaragesIndexName, createRes.Status())
	}

	log.Info("Garages index created successfully", zap.String("index_name", GaragesIndexName))
	return nil
}
