package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cognicore/newsprep/pkg/newsprep"
	"github.com/cognicore/newsprep/pkg/newsprep/dataset"
)

func main() {
	var (
		dataPath = flag.String("data", "", "Processed CSV file (required)")
		column   = flag.String("column", "content", "Text column the file was processed on")
	)
	flag.Parse()

	if err := run(*dataPath, *column, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(dataPath, column string, w io.Writer) error {
	if dataPath == "" {
		return errors.New("--data required")
	}

	stats, err := newsprep.ComputeStats(dataPath, column, dataset.ReadOptions{})
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}
	return stats.Write(w)
}
