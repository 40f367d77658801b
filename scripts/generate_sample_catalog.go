package main

import (
	"compress/gzip"
	"log"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

type sampleRow struct {
	Name        string `csv:"name"`
	Brand       string `csv:"brand"`
	Price       string `csv:"price"`
	Quantity    string `csv:"quantity"`
	Description string `csv:"description"`
	Image       string `csv:"image"`
}

// Writes data/catalog.csv and data/catalog.csv.gz for local seeding.
// Empty cells are left unset by the seeder.
func main() {
	dataDir := "data"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	rows := []sampleRow{
		{"Air Jordan 4 Retro", "Jordan", "210", "12", "Military Black colourway", "jordan4.jpg"},
		{"Dunk Low", "Nike", "110", "30", "Panda", "dunk-low.jpg"},
		{"Samba OG", "Adidas", "100", "25", "Classic terrace shoe", "samba.jpg"},
		{"Gel-Kayano 14", "Asics", "150", "", "Silver and cream", "kayano14.jpg"},
		{"990v6", "New Balance", "199.99", "8", "", "990v6.jpg"},
		{"Chuck 70", "Converse", "85", "40", "", ""},
		{"Old Skool", "Vans", "", "", "", "old-skool.jpg"},
	}

	plain, err := os.Create(filepath.Join(dataDir, "catalog.csv"))
	if err != nil {
		log.Fatalf("Failed to create catalog.csv: %v", err)
	}
	defer plain.Close()

	if err := gocsv.MarshalFile(&rows, plain); err != nil {
		log.Fatalf("Failed to write catalog.csv: %v", err)
	}

	compressed, err := os.Create(filepath.Join(dataDir, "catalog.csv.gz"))
	if err != nil {
		log.Fatalf("Failed to create catalog.csv.gz: %v", err)
	}
	defer compressed.Close()

	gz := gzip.NewWriter(compressed)
	if err := gocsv.Marshal(&rows, gz); err != nil {
		log.Fatalf("Failed to write catalog.csv.gz: %v", err)
	}
	if err := gz.Close(); err != nil {
		log.Fatalf("Failed to finish catalog.csv.gz: %v", err)
	}

	log.Printf("Wrote %d products to %s", len(rows), dataDir)
}
