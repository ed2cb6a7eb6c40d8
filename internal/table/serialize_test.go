package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roundTripCSV = "name,score,active\nalice,1.5,true\n\"bob, jr\",2,false\ncarol,,\n"

func TestCSVRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "mixed kinds",
			input: roundTripCSV,
			want:  roundTripCSV,
		},
		{
			name:  "integers beyond float precision",
			input: "id,v\n9007199254740993,1\n18446744073709551617,-9223372036854775809\n",
			want:  "id,v\n9007199254740993,1\n18446744073709551617,-9223372036854775809\n",
		},
		{
			name:  "whitespace-only cells",
			input: "a,b\nx, \ny,z\n",
			want:  "a,b\nx,\" \"\ny,z\n",
		},
		{
			name:  "space-padded cells and headers",
			input: " a ,b\n x ,1\ny, 2\n",
			want:  "\" a \",b\n\" x \",1\ny,\" 2\"\n",
		},
		{
			name:  "numeric-looking text",
			input: "code\n007\n1e3\nabc\n",
			want:  "code\n007\n1e3\nabc\n",
		},
		{
			name:  "missing markers are written empty",
			input: "a,b\nNA,1\nx,null\n",
			want:  "a,b\n,1\nx,\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustParseCSV(t, tt.input)
			data := mustSerialize(t, tbl, CSV)
			assert.Equal(t, tt.want, string(data))

			back, err := Parse(data, CSV)
			require.NoError(t, err)
			assert.Equal(t, tbl.ColumnNames(), back.ColumnNames())
			assert.Equal(t, tbl.Head(tbl.NumRows()), back.Head(back.NumRows()))
			assert.True(t, tbl.Equal(back))
		})
	}
}

func TestExcelRoundTrip(t *testing.T) {
	tbl := mustParseCSV(t, roundTripCSV)

	data := mustSerialize(t, tbl, Excel)
	back, err := Parse(data, Excel)
	require.NoError(t, err)

	assert.Equal(t, tbl.ColumnNames(), back.ColumnNames())
	assert.True(t, tbl.Equal(back), "excel round trip changed the table")
}

func TestExcelRoundTripKeepsTextThatLooksNumeric(t *testing.T) {
	tbl, err := New(
		&Column{Name: "code", Kind: Text, Cells: []Cell{TextCell("007"), TextCell("1e3"), Missing()}},
		&Column{Name: "n", Kind: Numeric, Cells: []Cell{NumberCell(7), NumberCell(1000), NumberCell(2.5)}},
	)
	require.NoError(t, err)

	back, err := Parse(mustSerialize(t, tbl, Excel), Excel)
	require.NoError(t, err)

	code := column(t, back, "code")
	assert.Equal(t, Text, code.Kind)
	assert.Equal(t, []string{"007", "1e3", ""}, formatted(code))
	assert.Equal(t, Numeric, column(t, back, "n").Kind)
	assert.True(t, tbl.Equal(back))
}

func TestSerializeExcelWritesSheet1(t *testing.T) {
	out, err := Serialize(mustParseCSV(t, "a\n1\n"), Excel)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", out.Extension)
	assert.Equal(t, Excel.MIMEType(), out.MIMEType)

	back, err := Parse(out.Data, Excel)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, back.ColumnNames())
}

func TestSerializeFilledNumbers(t *testing.T) {
	tbl := mustParseCSV(t, "v\n1\n2\nNA\n")
	tbl.FillMissingNumeric()
	assert.Equal(t, "v\n1\n2\n1.5\n", string(mustSerialize(t, tbl, CSV)))
}

func TestSerializeConstructedTable(t *testing.T) {
	tbl, err := New(
		&Column{Name: "n", Kind: Numeric, Cells: []Cell{NumberCell(0.1), NumberCell(1e21), Missing()}},
		&Column{Name: "b", Kind: Bool, Cells: []Cell{BoolCell(true), BoolCell(false), Missing()}},
	)
	require.NoError(t, err)
	assert.Equal(t, "n,b\n0.1,True\n1000000000000000000000,False\n,\n", string(mustSerialize(t, tbl, CSV)))
}

func TestSerializeHeaderOnly(t *testing.T) {
	tbl := mustParseCSV(t, "a,b\n")
	assert.Equal(t, "a,b\n", string(mustSerialize(t, tbl, CSV)))

	back, err := Parse(mustSerialize(t, tbl, Excel), Excel)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, back.ColumnNames())
	assert.Zero(t, back.NumRows())
}

func TestSerializeSingleColumnMissingCell(t *testing.T) {
	tbl := mustParseCSV(t, "v\n1\nNA\n3\n")
	data := mustSerialize(t, tbl, CSV)
	assert.Equal(t, "v\n1\n\"\"\n3\n", string(data))

	back, err := Parse(data, CSV)
	require.NoError(t, err)
	assert.Equal(t, 3, back.NumRows())
	assert.True(t, tbl.Equal(back))
}
