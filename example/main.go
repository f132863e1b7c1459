// Command example shows the usual wiring: load the client config, register
// the connection, build an immutable update-by-query request and execute it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/WalkerWang731/opensearch-dsl-go/osdsl"
	"github.com/WalkerWang731/opensearch-dsl-go/osdsl/opensearchengine"
)

func main() {
	config, err := opensearchengine.LoadClientConfig(os.Getenv("OSDSL_CONFIG"))
	if err != nil {
		fail(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	client, err := opensearchengine.NewClientFromConfig(config,
		opensearchengine.WithLogger(logger))
	if err != nil {
		fail(err)
	}

	if err = osdsl.AddConnection("default", client); err != nil {
		fail(err)
	}

	ubq := osdsl.New().
		Index("blogs").
		Filter(osdsl.Term("published", true)).
		Exclude(osdsl.Term("archived", true)).
		Script(osdsl.Script{Source: "ctx._source.likes++"})

	response, err := ubq.Execute(context.Background())
	if err != nil {
		fail(err)
	}

	result := response.(*osdsl.UpdateByQueryResponse)
	fmt.Printf("updated %d of %d documents in %dms\n", result.Updated, result.Total, result.Took)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
