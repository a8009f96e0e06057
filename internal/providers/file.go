package providers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"provider-funnel/internal/models"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// FileSource serves providers loaded once from a YAML or XLSX file.
type FileSource struct {
	providers []models.Provider
}

// NewFileSource picks the parser by extension: .yaml/.yml or .xlsx.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open provider file: %w", err)
	}
	defer f.Close()

	var list []models.Provider
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		list, err = ReadYAML(f)
	case ".xlsx":
		list, err = ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported provider file %q: use .yaml or .xlsx", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &FileSource{providers: list}, nil
}

// NewStaticSource serves a fixed provider list.
func NewStaticSource(list []models.Provider) *FileSource {
	return &FileSource{providers: list}
}

func (s *FileSource) Providers(_ context.Context, category string) ([]models.Provider, error) {
	out := []models.Provider{}
	for _, p := range s.providers {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

type yamlFile struct {
	Providers []models.Provider `yaml:"providers"`
}

// ReadYAML parses a document of the form `providers: [...]`.
func ReadYAML(r io.Reader) ([]models.Provider, error) {
	var doc yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return []models.Provider{}, nil
		}
		return nil, err
	}
	for _, p := range doc.Providers {
		if err := validate(p); err != nil {
			return nil, err
		}
	}
	return doc.Providers, nil
}

// attrPrefix marks XLSX header cells that hold scoring attributes.
const attrPrefix = "attr:"

// ReadXLSX parses the first sheet. The header row names the columns; columns
// titled "attr:<key>" become attributes with ";"-separated values.
func ReadXLSX(r io.Reader) ([]models.Provider, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.Provider{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]models.Provider, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		p, err := providerFromRow(header, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func providerFromRow(header, row []string) (models.Provider, error) {
	var p models.Provider
	for i, col := range header {
		if i >= len(row) {
			break
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		switch col {
		case "id":
			p.ID = cell
		case "category":
			p.Category = cell
		case "name":
			p.Name = cell
		case "description":
			p.Description = cell
		case "phone":
			p.Phone = cell
		case "email":
			p.Email = cell
		case "website":
			p.Website = cell
		case "address":
			p.Address = cell
		case "featured":
			v, err := strconv.ParseBool(strings.ToLower(cell))
			if err != nil {
				return p, fmt.Errorf("featured: %w", err)
			}
			p.Featured = v
		case "rating":
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return p, fmt.Errorf("rating: %w", err)
			}
			p.Rating = &v
		default:
			if key, ok := strings.CutPrefix(col, attrPrefix); ok && key != "" {
				if p.Attributes == nil {
					p.Attributes = map[string][]string{}
				}
				p.Attributes[key] = splitValues(cell)
			}
		}
	}
	return p, validate(p)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
