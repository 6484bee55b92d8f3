package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripSQLFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare SQL untouched", "SELECT 1", "SELECT 1"},
		{"sql fence", "```sql\nSELECT * FROM positions\n```", "SELECT * FROM positions"},
		{"plain fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"uppercase fence tag", "```SQL\nSELECT 1\n```", "SELECT 1"},
		{"surrounding whitespace", "  ```sql\nSELECT 1\n```  ", "SELECT 1"},
		{"unterminated fence left alone", "```sql\nSELECT 1", "```sql\nSELECT 1"},
		{"empty string", "", ""},
		{"fence only", "``````", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, StripSQLFences(tt.input))
		})
	}
}

func TestSQLPrompt(t *testing.T) {
	t.Parallel()

	p := sqlPrompt("who are the clients?", "Table: client_info_view")
	assert.True(t, strings.HasPrefix(p, "Database schema:\n"))
	assert.Contains(t, p, "Table: client_info_view")
	assert.Contains(t, p, "User's question: who are the clients?")
	assert.True(t, strings.HasSuffix(p, "SQL Query:"))
}
