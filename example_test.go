package spectral_test

import (
	"context"
	"fmt"
	"log"

	spectral "github.com/hupe1980/spectral"
	"github.com/hupe1980/spectral/blobstore"
	"github.com/hupe1980/spectral/dataset"
)

func ExampleTrain() {
	ctx := context.Background()

	ds, err := dataset.Synthesize(dataset.SyntheticConfig{
		Dim:       32,
		Classes:   8,
		Train:     1000,
		Query:     100,
		Retrieval: 1000,
		Spread:    0.3,
	}, 3367)
	if err != nil {
		log.Fatal(err)
	}

	result, err := spectral.Train(ctx, ds, 16)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("code length: %d\n", result.CodeLength)
	fmt.Printf("query codes: %d rows\n", result.QueryCodes.Rows())
	// Output:
	// code length: 16
	// query codes: 100 rows
}

func ExampleNewExperiment() {
	ctx := context.Background()

	ds, err := dataset.Synthesize(dataset.DefaultSyntheticConfig(), 3367)
	if err != nil {
		log.Fatal(err)
	}

	store := blobstore.NewMemoryStore()
	exp := spectral.NewExperiment(ds, []int{8, 16, 32},
		spectral.WithCheckpointStore(store),
	)

	results, err := exp.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("sweep steps: %d\n", len(results))
	// Output:
	// sweep steps: 3
}
