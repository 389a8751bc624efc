package infrastructure

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"spatial-plot/internal/domain"
)

type TXTCircleReader struct {
	logger *zap.Logger
}

func NewTXTCircleReader(logger *zap.Logger) *TXTCircleReader {
	return &TXTCircleReader{logger: logger}
}

// ReadCircles reads a whitespace separated table. The first line is a
// header and is skipped; every other non-blank line that does not start
// with '#' holds center coordinates optionally followed by a radius in
// the column named "r" or "radius".
//
//	x	y	r
//	0	0	2.5
//	1	1
func (r *TXTCircleReader) ReadCircles(filename string) ([]domain.CircleRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(lines) < 1 {
		return nil, domain.ErrInvalidFileFormat
	}

	header := strings.Fields(lines[0])
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: empty header", domain.ErrInvalidFileFormat)
	}
	radiusCol := -1
	for i, name := range header {
		switch strings.ToLower(name) {
		case "r", "radius":
			radiusCol = i
		}
	}

	var records []domain.CircleRecord
	for i := 1; i < len(lines); i++ {
		text := strings.TrimSpace(lines[i])
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		values := make([]float64, len(fields))
		for j, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %w", domain.ErrInvalidFileFormat, i+1, j+1, err)
			}
			values[j] = v
		}

		record := domain.CircleRecord{Line: i + 1}
		if radiusCol >= 0 && radiusCol < len(values) {
			radius := values[radiusCol]
			record.Radius = &radius
			values = append(values[:radiusCol], values[radiusCol+1:]...)
		}
		record.Center = values
		records = append(records, record)
	}

	r.logger.Debug("circle records read",
		zap.String("file", filename),
		zap.Int("count", len(records)))

	return records, nil
}
