package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sqlgenie/genie/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writePolicy(t, `
allowed_tables:
  - client_info_view
  - positions
tables:
  public.client_info_view:
    description: "Client master data"
    columns:
      email: "Client email address"
      ssn:
        description: "Social security number"
        mask: "redact"
  public.positions:
    description: "Open positions per client"
`)

	pol, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"client_info_view", "positions"}, pol.AllowedTables)

	tc := pol.Tables["public.client_info_view"]
	assert.Equal(t, "Client master data", tc.Description)
	assert.Equal(t, "Client email address", tc.Columns["email"].Description)
	assert.Equal(t, domain.MaskRedact, tc.Columns["ssn"].Mask)
	assert.Empty(t, tc.Columns["email"].Mask, "plain string form has no mask")
}

func TestLoadFromFile_InvalidMask(t *testing.T) {
	path := writePolicy(t, `
tables:
  public.clients:
    columns:
      ssn:
        mask: "rot13"
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value \"rot13\"")
}

func TestLoadFromFile_EmptyAllowedTableEntry(t *testing.T) {
	path := writePolicy(t, `
allowed_tables:
  - client_info_view
  - ""
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty entry")
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMasks(t *testing.T) {
	pol := &Policy{
		Tables: map[string]TableContext{
			"a": {Columns: map[string]ColumnContext{
				"email": {Mask: domain.MaskPartial},
				"name":  {Description: "plain"},
			}},
			"b": {Columns: map[string]ColumnContext{
				"ssn": {Mask: domain.MaskRedact},
			}},
		},
	}

	masks := pol.Masks()
	assert.Equal(t, map[string]domain.MaskType{
		"email": domain.MaskPartial,
		"ssn":   domain.MaskRedact,
	}, masks)
}

func TestMasks_EmptyIsNil(t *testing.T) {
	assert.Nil(t, (&Policy{}).Masks())
}

func TestSchemaText_ExplicitDescriptionWins(t *testing.T) {
	pol := &Policy{
		SchemaDescription: "Table: custom (a, b)\n",
		Tables: map[string]TableContext{
			"ignored": {Description: "never rendered"},
		},
	}
	assert.Equal(t, "Table: custom (a, b)", pol.SchemaText())
}

func TestSchemaText_RendersTables(t *testing.T) {
	pol := &Policy{
		Tables: map[string]TableContext{
			"positions": {
				Description: "Open positions",
				Columns: map[string]ColumnContext{
					"symbol":   {Description: "Ticker symbol"},
					"quantity": {},
				},
			},
			"client_info_view": {Description: "Client master data"},
		},
	}

	text := pol.SchemaText()
	assert.Equal(t,
		"Table: client_info_view - Client master data\n"+
			"Table: positions - Open positions\n"+
			"  - quantity\n"+
			"  - symbol: Ticker symbol",
		text)
}
