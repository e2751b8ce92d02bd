package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"companysift/internal/domain"
)

// header variants accepted for each required/known column
var columnAliases = map[string][]string{
	"companynumber": {"companynumber", "company_number"},
	"companyname":   {"companyname", "company_name"},
	"postcode":      {"postcode", "post_code"},
	"siccodes":      {"siccodes", "sic_codes"},
}

var requiredColumns = []string{"companynumber", "companyname", "postcode"}

// ReadCompanies loads and validates every row of a registry CSV. Rows
// missing a required field are logged and skipped, not fatal.
func ReadCompanies(path string) ([]domain.Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	// map canonical name -> column index
	colIdx := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for canonical, aliases := range columnAliases {
			for _, a := range aliases {
				if h == a {
					if _, taken := colIdx[canonical]; !taken {
						colIdx[canonical] = i
					}
				}
			}
		}
	}
	var missing []string
	for _, req := range requiredColumns {
		if _, ok := colIdx[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("input csv missing required columns: %s", strings.Join(missing, ", "))
	}

	known := map[int]bool{}
	for _, i := range colIdx {
		known[i] = true
	}

	var companies []domain.Company
	line := 1
	for {
		line++
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[csv] line %d: %v, skipping", line, err)
			continue
		}

		get := func(canonical string) string {
			i := colIdx[canonical]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		c := domain.Company{
			Number:   get("companynumber"),
			Name:     get("companyname"),
			Postcode: get("postcode"),
		}
		if i, ok := colIdx["siccodes"]; ok && i < len(rec) {
			c.SICCodes = strings.TrimSpace(rec[i])
		}
		switch {
		case c.Number == "":
			log.Printf("[csv] line %d: missing company number, skipping", line)
			continue
		case c.Name == "":
			log.Printf("[csv] line %d: missing company name, skipping", line)
			continue
		case c.Postcode == "":
			log.Printf("[csv] line %d: missing postcode, skipping", line)
			continue
		}

		// pass-through columns we don't interpret
		for i, v := range rec {
			if known[i] || i >= len(header) {
				continue
			}
			if c.Extra == nil {
				c.Extra = map[string]string{}
			}
			c.Extra[header[i]] = v
		}
		companies = append(companies, c)
	}

	log.Printf("[csv] read %d valid companies from %s", len(companies), path)
	return companies, nil
}
