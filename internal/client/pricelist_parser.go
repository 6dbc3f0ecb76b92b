package client

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"spareparts/catalog/internal/batch"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

type column int

const (
	colPartNo column = iota
	colName
	colBrand
	colCategory
	colCompatibility
	colPrice
	colBulk
	colQuantity
	colWarranty
)

// Header spellings seen on supplier price sheets, normalized by headerKey.
var headerColumns = map[string]column{
	"partno":        colPartNo,
	"partnumber":    colPartNo,
	"sku":           colPartNo,
	"code":          colPartNo,
	"name":          colName,
	"description":   colName,
	"item":          colName,
	"brand":         colBrand,
	"make":          colBrand,
	"category":      colCategory,
	"type":          colCategory,
	"compatibility": colCompatibility,
	"fits":          colCompatibility,
	"models":        colCompatibility,
	"price":         colPrice,
	"retail":        colPrice,
	"retailprice":   colPrice,
	"unitprice":     colPrice,
	"bulk":          colBulk,
	"bulkprice":     colBulk,
	"tradeprice":    colBulk,
	"qty":           colQuantity,
	"quantity":      colQuantity,
	"stock":         colQuantity,
	"warranty":      colWarranty,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
var nonDigit = regexp.MustCompile(`[^0-9.]+`)

type priceListParser struct{}

func newPriceListParser() *priceListParser {
	return &priceListParser{}
}

// ParsePriceList reads the first table whose header row names a part number or
// name column. Rows without either are skipped.
func (p *priceListParser) ParsePriceList(html string) ([]batch.Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var (
		rows  []batch.Row
		found bool
	)

	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		header, columns := p.extractHeader(table)
		if !hasIdentity(columns) {
			return true
		}
		found = true
		rows = p.extractRows(table, header, columns)
		return false
	})

	if !found {
		return nil, fmt.Errorf("no price table found")
	}

	log.Debugf("Parsed price list with %d rows", len(rows))
	return rows, nil
}

func (p *priceListParser) extractHeader(table *goquery.Selection) (*goquery.Selection, map[int]column) {
	columns := make(map[int]column)

	header := table.Find("thead tr").First()
	if header.Length() == 0 {
		header = table.Find("tr").First()
	}

	header.Children().Filter("th, td").Each(func(i int, cell *goquery.Selection) {
		if col, ok := headerColumns[headerKey(cell.Text())]; ok {
			columns[i] = col
		}
	})
	return header, columns
}

func (p *priceListParser) extractRows(table, header *goquery.Selection, columns map[int]column) []batch.Row {
	var rows []batch.Row

	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if tr.IsSelection(header) {
			return
		}
		// Row headers (<th scope="row">) occupy a column like any other cell.
		cells := tr.Children().Filter("th, td")
		if cells.Length() == 0 {
			return
		}

		var row batch.Row
		skip := false
		cells.Each(func(j int, cell *goquery.Selection) {
			col, ok := columns[j]
			if !ok || skip {
				return
			}
			text := strings.TrimSpace(cell.Text())

			switch col {
			case colPartNo:
				row.PartNo = text
			case colName:
				row.Name = text
			case colBrand:
				row.Brand = text
			case colCategory:
				row.Category = text
			case colCompatibility:
				row.Compatibility = splitList(text)
			case colWarranty:
				row.Warranty = text
			case colPrice, colBulk, colQuantity:
				n, err := parseAmount(text)
				if err != nil {
					log.Warnf("⚠️ Skipping price list row %d: %v", i, err)
					skip = true
					return
				}
				switch col {
				case colPrice:
					row.Price = n
				case colBulk:
					row.Bulk = n
				default:
					row.Quantity = n
				}
			}
		})

		if skip {
			return
		}
		if row.PartNo == "" && row.Name == "" {
			log.Debugf("Skipping empty price list row %d", i)
			return
		}
		rows = append(rows, row)
	})

	return rows
}

func hasIdentity(columns map[int]column) bool {
	for _, col := range columns {
		if col == colPartNo || col == colName {
			return true
		}
	}
	return false
}

func headerKey(text string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "")
}

// parseAmount reads values such as "KES 18,500" or "18 500.00".
func parseAmount(text string) (int, error) {
	cleaned := nonDigit.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	return int(f), nil
}

func splitList(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' || r == '/' }) {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
