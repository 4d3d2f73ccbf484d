package validate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/ports"
	"github.com/Gunvolt24/quotes/pkg/serde"
)

type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// StdinPath — путь, означающий чтение из stdin.
const StdinPath = "-"

// DetectFormat — формат по расширению; stdin считается JSONL.
func DetectFormat(path string) InputFormat {
	if path == StdinPath {
		return FormatJSONL
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatJSON
	}
}

// ValidateFile проверяет файл (или stdin при path == "-") как один JSON-документ
// или JSONL; валидные котировки пишет в ow.
func ValidateFile(
	ctx context.Context,
	deserializer serde.Deserializer[domain.Quote],
	validator ports.QuoteValidator,
	path string,
	format InputFormat,
	ow io.Writer,
	onInvalid InvalidLineFunc,
) (Summary, error) {
	if format == FormatAuto || format == "" {
		format = DetectFormat(path)
	}
	if format != FormatJSON && format != FormatJSONL {
		return Summary{}, fmt.Errorf("unsupported format: %s", format)
	}

	in, closeIn, err := openInput(path)
	if err != nil {
		return Summary{}, err
	}
	defer closeIn()

	if format == FormatJSONL {
		return ValidateJSONLStream(ctx, deserializer, validator, in, ow, onInvalid)
	}

	raw, err := io.ReadAll(in)
	if err != nil {
		return Summary{}, fmt.Errorf("read input: %w", err)
	}
	quote, err := ValidateQuoteFromJSON(ctx, deserializer, validator, raw)
	if err != nil {
		return Summary{Invalid: 1}, err
	}
	if err := writeCanonical(domain.NewQuoteSerializer(), quote, ow); err != nil {
		return Summary{}, err
	}
	return Summary{Valid: 1}, nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == StdinPath {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
