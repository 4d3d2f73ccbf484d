package validate

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/ports"
	"github.com/Gunvolt24/quotes/pkg/serde"
)

// Summary — итог проверки входа.
type Summary struct {
	Valid   int
	Invalid int
}

func (s Summary) String() string { return fmt.Sprintf("%d valid / %d invalid", s.Valid, s.Invalid) }

// InvalidLineFunc — уведомление о пропущенной строке (нумерация с 1).
type InvalidLineFunc func(line int, err error)

const maxLineBytes = 10 << 20

// ValidateJSONLStream читает JSONL, пропускает пустые и невалидные строки,
// валидные котировки пишет в ow в каноническом виде (строка на запись).
// onInvalid может быть nil.
func ValidateJSONLStream(
	ctx context.Context,
	deserializer serde.Deserializer[domain.Quote],
	validator ports.QuoteValidator,
	ir io.Reader,
	ow io.Writer,
	onInvalid InvalidLineFunc,
) (Summary, error) {
	var sum Summary
	serializer := domain.NewQuoteSerializer()

	scanner := bufio.NewScanner(ir)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	for line := 1; scanner.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}

		quote, err := ValidateQuoteFromJSON(ctx, deserializer, validator, raw)
		if err != nil {
			sum.Invalid++
			if onInvalid != nil {
				onInvalid(line, err)
			}
			continue
		}

		if err := writeCanonical(serializer, quote, ow); err != nil {
			return sum, err
		}
		sum.Valid++
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("scan: %w", err)
	}
	return sum, nil
}

func writeCanonical(serializer serde.Serializer[domain.Quote], quote *domain.Quote, ow io.Writer) error {
	canonical, err := serializer.Serialize(sourceTopic, *quote)
	if err != nil {
		return err
	}
	if _, err := ow.Write(append(canonical, '\n')); err != nil {
		return fmt.Errorf("write valid line: %w", err)
	}
	return nil
}
