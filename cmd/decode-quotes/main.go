package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/pkg/serde"
	"github.com/Gunvolt24/quotes/pkg/validate"
)

// CLI для офлайн-проверки котировок: декодирование тем же десериализатором,
// что и у консьюмера, затем валидация. Валидные котировки пишутся в stdout.
func main() {
	inputPath := flag.String("in", "", "path to input (.json or .jsonl). If empty, reads from stdin.")
	formatStr := flag.String("format", "auto", "input format: auto|json|jsonl")
	strict := flag.Bool("strict", false, "reject unknown fields")
	flag.Parse()

	ctx := context.Background()

	var opts []serde.JSONOption
	if *strict {
		opts = append(opts, serde.WithDisallowUnknownFields())
	}
	deserializer := domain.NewQuoteDeserializer(opts...)
	validator := validate.NewQuoteValidator()

	path := *inputPath
	if path == "" {
		path = validate.StdinPath
	}

	summary, err := validate.ValidateFile(ctx, deserializer, validator, path, validate.InputFormat(*formatStr), os.Stdout,
		func(line int, err error) {
			fmt.Fprintf(os.Stderr, "line %d: %v\n", line, err)
		})
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v (%s)\n", err, summary)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "validation ok (%s)\n", summary)
}
