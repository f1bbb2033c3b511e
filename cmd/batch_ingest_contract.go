/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/contract-analysis-be/config"
	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/repository"
	"github.com/tieubaoca/contract-analysis-be/service"
	"github.com/tieubaoca/contract-analysis-be/types"
)

// batchIngestContractCmd represents the batchIngestContract command
var batchIngestContractCmd = &cobra.Command{
	Use:   "batch-ingest-contract",
	Short: "Ingest every PDF contract in a directory",
	Long: `Walks a directory and ingests each PDF found in it. Files that fail
are logged and skipped; the rest of the batch continues.`,
	Run: func(cmd *cobra.Command, args []string) {
		directory, _ := cmd.Flags().GetString("directory")
		tags, _ := cmd.Flags().GetStringArray("tags")
		reinit, _ := cmd.Flags().GetBool("reinit")

		if directory == "" {
			log.Fatal("--directory is required")
		}

		cfg, err := config.LoadConfig(configPath())
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		index, err := newVectorIndex(cfg)
		if err != nil {
			log.Fatalf("Failed to create vector index: %v", err)
		}
		if reinit {
			weaviateIndex, ok := index.(*database.WeaviateIndex)
			if !ok {
				log.Fatal("--reinit only applies to the weaviate index")
			}
			if err := weaviateIndex.ReInit(); err != nil {
				log.Fatalf("Failed to reinitialize vector index: %v", err)
			}
		}

		mongoClient := database.DefaultMongoClient
		if err := mongoClient.Ping(context.Background(), nil); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		documentRepo := repository.NewDocumentRepo(mongoClient.Database(cfg.MongoDatabase).Collection("documents"))

		chunker, err := service.NewChunkerService(types.DocumentServiceConfig{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
		})
		if err != nil {
			log.Fatalf("Failed to create chunker: %v", err)
		}
		ingestService := service.NewIngestService(
			cfg.UploadDir,
			service.NewPDFService(),
			chunker,
			newEmbedder(cfg),
			index,
			documentRepo,
		)

		// read all pdf files in the directory
		files, err := os.ReadDir(directory)
		if err != nil {
			log.Fatalf("Failed to read directory: %v", err)
		}
		for _, file := range files {
			if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".pdf") {
				continue
			}
			filePath := filepath.Join(directory, file.Name())
			record, err := ingestService.IngestPath(context.Background(), filePath, tags)
			if err != nil {
				log.Printf("Failed to ingest contract %s: %v", filePath, err)
				continue
			}
			fmt.Printf("Ingested %s as document %s (%d chunks)\n", record.Filename, record.ID, record.NumChunks)
		}
	},
}

func init() {
	rootCmd.AddCommand(batchIngestContractCmd)

	batchIngestContractCmd.Flags().String("directory", "", "Path to the directory of contracts to ingest")
	batchIngestContractCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the vector index first")
	batchIngestContractCmd.Flags().StringArrayP("tags", "g", []string{}, "Tags for the contracts")
}
