// File: cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"motormate_backend/internal/config"
	"motormate_backend/internal/garage"
	"motormate_backend/internal/platform/database"
	platformElasticsearch "motormate_backend/internal/platform/elasticsearch"
	"motormate_backend/internal/platform/logger"
)

func main() {
	syncGaragesCmd := flag.NewFlagSet("sync-garages", flag.ExitOnError)
	batchSize := syncGaragesCmd.Int("batch-size", 100, "Batch size for syncing garages")
	esRefresh := syncGaragesCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")

	if len(os.Args) > 1 && os.Args[1] == "sync-garages" {
		syncGaragesCmd.Parse(os.Args[2:])

		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
		}
		appLogger, err := logger.New(cfg)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
		}
		db, err := database.NewGORM(cfg)
		if err != nil {
			appLogger.Fatal("FATAL: Failed to initialize database for sync", zap.Error(err))
		}
		defer database.CloseGORMDB(db)

		esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("FATAL: Failed to initialize Elasticsearch client for sync", zap.Error(err))
		}
		if !esClient.Enabled() {
			appLogger.Fatal("FATAL: Elasticsearch is not configured; set ELASTICSEARCH_URL before running sync-garages.")
		}

		if err := platformElasticsearch.CreateGaragesIndexIfNotExists(esClient, appLogger); err != nil {
			appLogger.Fatal("FATAL: Failed to create/verify Elasticsearch index before sync", zap.Error(err))
		}

		garageRepo := garage.NewGORMRepository(db)
		if err := runGarageSync(garageRepo, esClient, appLogger, *batchSize, *esRefresh); err != nil {
			appLogger.Fatal("FATAL: Garage synchronization failed", zap.Error(err))
		}
		appLogger.Info("Garage synchronization completed successfully.")
		return
	}

	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if server.ESClient.Enabled() {
		if err := platformElasticsearch.CreateGaragesIndexIfNotExists(server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch garages index; search falls back to SQL.", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch not configured, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// runGarageSync pages through the garages table and bulk-indexes each batch
// into the Elasticsearch garages index.
func runGarageSync(
	garageRepo garage.Repository,
	esClient *platformElasticsearch.ESClientWrapper,
	logger *zap.Logger,
	batchSize int,
	esRefresh string,
) error {
	logger.Info("Starting garage synchronization to Elasticsearch...",
		zap.Int("batchSize", batchSize),
		zap.String("esRefreshPolicy", esRefresh),
	)

	offset := 0
	totalSynced := 0
	totalFailed := 0
	batchNumber := 1

	for {
		garages, err := garageRepo.FindAllForSync(context.Background(), offset, batchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch batch %d: %w", batchNumber, err)
		}
		if len(garages) == 0 {
			break
		}

		var bulkBody strings.Builder
		batchIDs := make([]string, 0, len(garages))

		for i := range garages {
			g := &garages[i]
			docJSON, errDoc := garage.ToElasticsearchDoc(g)
			if errDoc != nil {
				logger.Error("Failed to convert garage to Elasticsearch document",
					zap.String("garageID", g.ID.String()),
					zap.Error(errDoc),
				)
				totalFailed++
				continue
			}
			batchIDs = append(batchIDs, g.ID.String())
			bulkBody.WriteString(fmt.Sprintf("{ \"index\" : { \"_index\" : %q, \"_id\" : %q } }\n", platformElasticsearch.GaragesIndexName, g.ID.String()))
			bulkBody.WriteString(docJSON)
			bulkBody.WriteString("\n")
		}

		if bulkBody.Len() == 0 {
			offset += len(garages)
			batchNumber++
			continue
		}

		req := esapi.BulkRequest{
			Body:    strings.NewReader(bulkBody.String()),
			Refresh: esRefresh,
		}
		res, errBulk := req.Do(context.Background(), esClient.Client)
		if errBulk != nil {
			logger.Error("Failed to send bulk request to Elasticsearch",
				zap.Error(errBulk), zap.Int("batchNumber", batchNumber))
			totalFailed += len(batchIDs)
			offset += len(garages)
			batchNumber++
			continue
		}

		batchSynced, batchFailed := parseBulkResponse(res, batchIDs, logger)
		res.Body.Close()

		totalSynced += batchSynced
		totalFailed += batchFailed
		logger.Info("Batch processed.",
			zap.Int("batchNumber", batchNumber),
			zap.Int("syncedInBatch", batchSynced),
			zap.Int("failedInBatch", batchFailed),
		)

		offset += len(garages)
		batchNumber++
	}

	logger.Info("Garage synchronization process finished.",
		zap.Int("totalGaragesSynced", totalSynced),
		zap.Int("totalGaragesFailed", totalFailed),
	)
	if totalFailed > 0 {
		return fmt.Errorf("%d garages failed to sync", totalFailed)
	}
	return nil
}

// parseBulkResponse counts per-item outcomes of a bulk indexing call. A bulk
// request can succeed overall while individual documents fail.
func parseBulkResponse(res *esapi.Response, batchIDs []string, logger *zap.Logger) (synced, failed int) {
	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}

	if res.IsError() {
		logger.Error("Elasticsearch bulk request returned an error", zap.String("status", res.Status()))
		return 0, len(batchIDs)
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		logger.Error("Failed to parse Elasticsearch bulk response body", zap.Error(err))
		return 0, len(batchIDs)
	}

	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			logger.Error("Failed to index document in bulk batch",
				zap.String("garageID", item.Index.ID),
				zap.Any("error", item.Index.Error),
				zap.Int("status", item.Index.Status),
			)
			failed++
		} else {
			synced++
		}
	}
	return synced, failed
}
