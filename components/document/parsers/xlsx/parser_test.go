package xlsx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memReader struct {
	*bytes.Reader
}

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Nutrient", "Daily value", "Unit"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Sodium", 2000, "mg"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Sugars | added", 50}))
	_, err := f.NewSheet("Empty")
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewParser().Parse(context.Background(), memReader{bytes.NewReader(workbook(t))}, &out))
	want := strings.Join([]string{
		"## Sheet1",
		"",
		"| Nutrient | Daily value | Unit |",
		"| --- | --- | --- |",
		"| Sodium | 2000 | mg |",
		`| Sugars \| added | 50 |  |`,
		"",
	}, "\n")
	assert.Equal(t, want, out.String())
	assert.NotContains(t, out.String(), "Empty")
}

func TestParseNotWorkbook(t *testing.T) {
	var out bytes.Buffer
	err := NewParser().Parse(context.Background(), memReader{bytes.NewReader([]byte("plain text"))}, &out)
	assert.Error(t, err)
}
