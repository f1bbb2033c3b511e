/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/contract-analysis-be/config"
	"github.com/tieubaoca/contract-analysis-be/database"
	"github.com/tieubaoca/contract-analysis-be/repository"
	"github.com/tieubaoca/contract-analysis-be/service"
	"github.com/tieubaoca/contract-analysis-be/types"
)

// ingestContractCmd represents the ingestContract command
var ingestContractCmd = &cobra.Command{
	Use:   "ingest-contract",
	Short: "Ingest a single PDF contract into the index",
	Long: `Extracts, chunks, embeds and indexes one PDF contract from disk,
then registers it in the document registry. Prints the assigned
document id on success.`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		tags, _ := cmd.Flags().GetStringArray("tags")
		reinit, _ := cmd.Flags().GetBool("reinit")

		if filePath == "" {
			log.Fatal("--file is required")
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

		record, err := ingestService.IngestPath(context.Background(), filePath, tags)
		if err != nil {
			log.Fatalf("Failed to ingest contract: %v", err)
		}
		fmt.Printf("Ingested %s as document %s (%d pages, %d chunks)\n",
			record.Filename, record.ID, record.NumPages, record.NumChunks)
	},
}

func init() {
	rootCmd.AddCommand(ingestContractCmd)

	ingestContractCmd.Flags().StringP("file", "f", "", "Path to the PDF contract to ingest")
	ingestContractCmd.Flags().StringArrayP("tags", "g", []string{}, "Tags for the contract")
	ingestContractCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the vector index first")
}
