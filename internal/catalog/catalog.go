// Package catalog builds the HBase catalog description of the science
// table. The catalog is the JSON document the storage connector needs
// to map flattened alert columns onto column families; the archiving
// job writes it to the path configured as SCIENCE_DB_CATALOG.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// rowKeyColumns are the columns concatenated into the row key.
// Do not change this casually: replacing columns of an existing table
// is possible, changing its key design means copying the whole table.
var rowKeyColumns = []string{"objectId", "jd", "ra", "dec"}

// RowKeyColumns returns the columns the row key is built from.
func RowKeyColumns() []string {
	cols := make([]string, len(rowKeyColumns))
	copy(cols, rowKeyColumns)
	return cols
}

// RowKeyName returns the name of the row key column, a concatenation
// of the column names it is built from.
func RowKeyName() string {
	return strings.Join(rowKeyColumns, "_")
}

// RowKeyValue builds a row key from column data, in RowKeyColumns
// order, joined by sep.
func RowKeyValue(sep string, values ...string) string {
	return strings.Join(values, sep)
}

type tableSpec struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

type columnSpec struct {
	Family string `json:"cf"`
	Col    string `json:"col"`
	Type   string `json:"type"`
}

type catalogSpec struct {
	Table   tableSpec             `json:"table"`
	RowKey  string                `json:"rowkey"`
	Columns map[string]columnSpec `json:"columns"`
}

// Build renders the schema as a catalog for tableName, in the default
// namespace. rowKey names the row key column; if the schema does not
// define it, it is attached as a string column. A schema column with
// the row key name is moved into the reserved rowkey family.
func (s *Schema) Build(tableName, rowKey string) ([]byte, error) {
	if tableName == "" {
		return nil, errors.New("empty table name")
	}
	if rowKey == "" {
		return nil, errors.New("empty row key name")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	spec := catalogSpec{
		Table:   tableSpec{Namespace: "default", Name: tableName},
		RowKey:  rowKey,
		Columns: make(map[string]columnSpec, len(s.Columns)+1),
	}

	for _, c := range s.Columns {
		family := c.Family
		if c.Name == rowKey {
			family = familyRowKey
		}
		spec.Columns[c.Name] = columnSpec{
			Family: family,
			Col:    c.Name,
			Type:   normalizeType(c.Type),
		}
	}
	if _, ok := spec.Columns[rowKey]; !ok {
		spec.Columns[rowKey] = columnSpec{Family: familyRowKey, Col: rowKey, Type: "string"}
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render catalog: %w", err)
	}
	return data, nil
}

// normalizeType collapses types the connector cannot store natively.
// Arrays and timestamps are serialized to strings before writing.
func normalizeType(t string) string {
	if t == "timestamp" || strings.HasPrefix(t, "array") {
		return "string"
	}
	return t
}

// WriteFile renders the catalog and writes it to path.
func (s *Schema) WriteFile(path, tableName, rowKey string) error {
	data, err := s.Build(tableName, rowKey)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog %s: %w", path, err)
	}
	return nil
}
