package extraction_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliador-ubl/internal/application/extraction"
)

// fixtureDir los XML de prueba viven junto al parser.
const fixtureDir = "../../infrastructure/dian/testdata"

// technicalKey clave con la que se generó el CUFE de invoice_net.xml.
const technicalKey = "clave-tecnica-prueba"

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(fixtureDir, name))
	require.NoError(t, err)
	return data
}

func newEngine(keys map[string]string) *extraction.Engine {
	return extraction.NewEngine(extraction.Options{TechnicalKeys: keys}, zerolog.Nop())
}

func buildZip(t *testing.T, files ...extraction.Input) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		require.NoError(t, err)
		_, err = w.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// hasWarning indica si algún aviso contiene substr.
func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if bytes.Contains([]byte(w), []byte(substr)) {
			return true
		}
	}
	return false
}
