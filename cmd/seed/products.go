package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
)

// sampleProducts catálogo mínimo para un entorno recién creado.
func sampleProducts() []*entity.Product {
	return []*entity.Product{
		{Name: "[SAMPLE] Portland Cement", Category: "Structural", Price: decimal.NewFromInt(280), Stock: 150, Unit: "Piece(s)"},
		{Name: "[SAMPLE] Steel Bar 10mm", Category: "Structural", Price: decimal.NewFromInt(185), Stock: 500, Unit: "Piece(s)"},
	}
}

// parseProductsCSV lee name,category,price,stock,unit con fila de encabezado.
// Con latin1 el contenido se decodifica desde ISO-8859-1 (exportaciones de hojas de cálculo antiguas).
func parseProductsCSV(r io.Reader, latin1 bool) ([]*entity.Product, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 5

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("encabezado: %w", err)
	}

	var out []*entity.Product
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			return nil, fmt.Errorf("línea %d: nombre vacío", line)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("línea %d: precio inválido %q", line, rec[2])
		}
		stock, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("línea %d: stock inválido %q", line, rec[3])
		}
		out = append(out, &entity.Product{
			Name:     name,
			Category: strings.TrimSpace(rec[1]),
			Price:    price,
			Stock:    stock,
			Unit:     strings.TrimSpace(rec[4]),
		})
	}
	return out, nil
}
