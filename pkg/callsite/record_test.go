package callsite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamValueConversions(t *testing.T) {
	tests := []struct {
		name      string
		value     ParamValue
		wantInt   int64
		intOK     bool
		wantText  string
		textOK    bool
		wantIndet bool
	}{
		{"integral number", Number(2048), 2048, true, "2048", true, false},
		{"fractional number", Number(1.5), 0, false, "1.5", true, false},
		{"numeric string", String(" 1024 "), 1024, true, " 1024 ", true, false},
		{"curve name", String("secp256k1"), 0, false, "secp256k1", true, false},
		{"large power of two", Number(1 << 62), 1 << 62, true, "4611686018427387904", true, false},
		{"two to the 63", Number(1 << 63), 0, false, "9223372036854775808", true, false},
		{"below int64 range", Number(-1 << 64), 0, false, "-18446744073709551616", true, false},
		{"indeterminate", Indeterminate(), 0, false, "", false, true},
		{"zero value", ParamValue{}, 0, false, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tt.value.Int()
			assert.Equal(t, tt.intOK, ok)
			assert.Equal(t, tt.wantInt, n)

			s, ok := tt.value.Text()
			assert.Equal(t, tt.textOK, ok)
			assert.Equal(t, tt.wantText, s)

			assert.Equal(t, tt.wantIndet, tt.value.IsIndeterminate())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	input := `{"records": [
		{"family": "RSA", "parameters": {"key_size": 2048}, "location": {"file": "app.py", "line": 10}, "symbol": "generate_rsa_key"},
		{"family": "RSA", "parameters": {"key_size": null}, "location": {"file": "app.py", "line": 20}},
		{"family": "EC", "parameters": {"curve": "secp256k1"}, "location": {"file": "app.py", "line": 30}}
	]}`

	records, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	keySize, ok := records[0].Param("key_size")
	require.True(t, ok)
	n, ok := keySize.Int()
	require.True(t, ok)
	assert.Equal(t, int64(2048), n)
	assert.Equal(t, "generate_rsa_key", records[0].Symbol)

	indet, ok := records[1].Param("key_size")
	require.True(t, ok)
	assert.True(t, indet.IsIndeterminate())

	_, ok = records[2].Param("key_size")
	assert.False(t, ok)
	assert.Equal(t, "app.py:30", records[2].Location.String())
}

func TestDecodeBareListAndRoundTrip(t *testing.T) {
	input := `[{"family": "MD5", "location": {"file": "a.go", "line": 3}}]`
	records, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	out, err := json.Marshal(Record{
		Family:     "RSA",
		Parameters: map[string]ParamValue{"key_size": Indeterminate(), "padding": String("oaep")},
		Location:   Location{File: "x.py", Line: 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"family":"RSA","parameters":{"key_size":null,"padding":"oaep"},"location":{"file":"x.py","line":1}}`, string(out))
}

func TestDecodeRejectsMalformedRecords(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"family": "", "location": {"file": "a.go", "line": 1}}]`))
	assert.EqualError(t, err, "record #1 (a.go:1): family must not be empty")

	_, err = Decode(strings.NewReader(`[{"family": "RSA", "parameters": {"key_size": [1]}}]`))
	assert.Error(t, err)

	records, err := Decode(strings.NewReader("   "))
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.yaml")
	content := `records:
  - family: DSA
    parameters:
      key_size: 1024
    location:
      file: legacy.py
      line: 7
  - family: AES
    parameters:
      key_size: ~
      mode: ECB
    location:
      file: legacy.py
      line: 9
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	keySize, _ := records[0].Param("key_size")
	n, ok := keySize.Int()
	require.True(t, ok)
	assert.Equal(t, int64(1024), n)

	aesKey, ok := records[1].Param("key_size")
	require.True(t, ok)
	assert.True(t, aesKey.IsIndeterminate())
	mode, _ := records[1].Param("mode")
	text, _ := mode.Text()
	assert.Equal(t, "ECB", text)
}

func TestDecodeRejectsMisshapenInput(t *testing.T) {
	tests := []struct {
		name   string
		decode func(string) ([]Record, error)
		input  string
	}{
		{"json single record", jsonDecode, `{"family": "RSA", "parameters": {"key_size": 1024}, "location": {"file": "a.py", "line": 1}}`},
		{"json misspelled envelope", jsonDecode, `{"record": [{"family": "RSA"}]}`},
		{"json unknown record field", jsonDecode, `[{"family": "RSA", "params": {"key_size": 1024}}]`},
		{"json trailing value", jsonDecode, `[{"family": "RSA"}] [{"family": "MD5"}]`},
		{"yaml single record", yamlDecode, "family: RSA\nparameters:\n  key_size: 1024\n"},
		{"yaml misspelled envelope", yamlDecode, "recrods:\n  - family: RSA\n"},
		{"yaml unknown record field", yamlDecode, "- family: RSA\n  line: 4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := tt.decode(tt.input)
			assert.Error(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestDecodeYAMLDocumentMarker(t *testing.T) {
	records, err := yamlDecode("---\nrecords:\n  - family: MD5\n    location: {file: a.go, line: 2}\n")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "MD5", records[0].Family)

	records, err = yamlDecode("# nothing yet\n")
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func jsonDecode(s string) ([]Record, error) { return Decode(strings.NewReader(s)) }

func yamlDecode(s string) ([]Record, error) { return DecodeYAML(strings.NewReader(s)) }
