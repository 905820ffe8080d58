package catalog

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Column families of the science table. Qualifiers are grouped by what
// they describe, not by producer:
//
//   - i: columns identifying the alert (original alert data)
//   - d: columns further describing the alert (fink added value)
//   - b: binary blobs (FITS cutout images)
//
// The rowkey family is reserved; Build attaches it itself.
const (
	FamilyIdentity = "i"
	FamilyDerived  = "d"
	FamilyBinary   = "b"

	familyRowKey = "rowkey"
)

// Column describes one qualifier of the science table.
type Column struct {
	Name   string `toml:"name"`
	Type   string `toml:"type"`
	Family string `toml:"family"`
}

// Schema is the flattened column layout a catalog is built from.
type Schema struct {
	Columns []Column `toml:"columns"`
}

// PortalColumns returns the fixed column layout of the science portal.
// Careful when updating it: it changes the structure of the HBase
// table. Existing columns can be replaced, but keys cannot.
func PortalColumns() *Schema {
	return &Schema{Columns: []Column{
		{Name: "objectId", Type: "string", Family: FamilyIdentity},
		{Name: "schemavsn", Type: "string", Family: FamilyIdentity},
		{Name: "publisher", Type: "string", Family: FamilyIdentity},
		{Name: "candidate_jd", Type: "double", Family: FamilyIdentity},
		{Name: "candidate_ra", Type: "double", Family: FamilyIdentity},
		{Name: "candidate_dec", Type: "double", Family: FamilyIdentity},
		{Name: "candidate_magpsf", Type: "double", Family: FamilyIdentity},
		{Name: "candidate_nbad", Type: "integer", Family: FamilyIdentity},
		{Name: "candidate_rb", Type: "double", Family: FamilyIdentity},
		{Name: "cdsxmatch", Type: "string", Family: FamilyDerived},
		{Name: "rfscore", Type: "double", Family: FamilyDerived},
		{Name: "cutoutScience", Type: "binary", Family: FamilyBinary},
		{Name: "cutoutTemplate", Type: "binary", Family: FamilyBinary},
		{Name: "cutoutDifference", Type: "binary", Family: FamilyBinary},
	}}
}

// LoadSchema reads a TOML column layout from path. Deployments tune
// the portal layout without rebuilding by shipping their own file.
func LoadSchema(path string) (*Schema, error) {
	var schema Schema
	if _, err := toml.DecodeFile(path, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := schema.validate(); err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}
	return &schema, nil
}

func (s *Schema) validate() error {
	if len(s.Columns) == 0 {
		return errors.New("schema defines no columns")
	}

	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" {
			return errors.New("column with empty name")
		}
		if c.Type == "" {
			return fmt.Errorf("column %s: empty type", c.Name)
		}
		switch c.Family {
		case FamilyIdentity, FamilyDerived, FamilyBinary:
		default:
			return fmt.Errorf("column %s: unknown family %q", c.Name, c.Family)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %s", c.Name)
		}
		seen[c.Name] = true
	}

	return nil
}
