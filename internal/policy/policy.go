// Package policy loads operator-controlled YAML configuration: the table
// whitelist, business context for the LLM schema prompt, and column-level
// masking directives.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sqlgenie/genie/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// Policy is the operator's contract with the pipeline. AllowedTables feeds
// the whitelist rule, Tables feeds the schema prompt and masking.
type Policy struct {
	AllowedTables []string `yaml:"allowed_tables"`

	// SchemaDescription, when set, replaces the generated schema text sent
	// to the model.
	SchemaDescription string `yaml:"schema_description,omitempty"`

	// Tables maps table names (optionally schema-qualified) to business
	// context and masking rules.
	Tables map[string]TableContext `yaml:"tables,omitempty"`
}

// TableContext describes one table for the model and its masking rules.
type TableContext struct {
	Description string                   `yaml:"description"`
	Columns     map[string]ColumnContext `yaml:"columns"`
}

// ColumnContext holds a column's description and optional mask directive.
type ColumnContext struct {
	Description string          `yaml:"description"`
	Mask        domain.MaskType `yaml:"mask,omitempty"`
}

// UnmarshalYAML accepts both a plain string (description only) and the
// full struct form:
//
//	columns:
//	  email: "Client email address"
//	  ssn:
//	    description: "Social security number"
//	    mask: "redact"
func (cc *ColumnContext) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		cc.Description = value.Value
		return nil
	}
	type alias ColumnContext
	var a alias
	if err := value.Decode(&a); err != nil {
		return fmt.Errorf("decoding column context: %w", err)
	}
	*cc = ColumnContext(a)
	return nil
}

// Masks collects column masking directives keyed by column name, the shape
// the query service applies to result rows.
func (p *Policy) Masks() map[string]domain.MaskType {
	masks := make(map[string]domain.MaskType)
	for _, tc := range p.Tables {
		for col, cc := range tc.Columns {
			if cc.Mask != "" {
				masks[col] = cc.Mask
			}
		}
	}
	if len(masks) == 0 {
		return nil
	}
	return masks
}

// SchemaText renders the schema description handed to the model. An explicit
// SchemaDescription wins; otherwise the table contexts are rendered in a
// stable order.
func (p *Policy) SchemaText() string {
	if p.SchemaDescription != "" {
		return strings.TrimSpace(p.SchemaDescription)
	}

	names := make([]string, 0, len(p.Tables))
	for name := range p.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		tc := p.Tables[name]
		fmt.Fprintf(&sb, "Table: %s", name)
		if tc.Description != "" {
			fmt.Fprintf(&sb, " - %s", tc.Description)
		}
		sb.WriteString("\n")

		cols := make([]string, 0, len(tc.Columns))
		for col := range tc.Columns {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			cc := tc.Columns[col]
			fmt.Fprintf(&sb, "  - %s", col)
			if cc.Description != "" {
				fmt.Fprintf(&sb, ": %s", cc.Description)
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}
