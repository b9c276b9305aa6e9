package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/php-analyzer/internal/config"
	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

func writeTempPHP(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestAnalyzeFilesResolvesSymbolsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	classFile := writeTempPHP(t, dir, "widget.php", `<?php
class Widget {
	public function label() {
		return "widget";
	}
}
`)
	callerFile := writeTempPHP(t, dir, "caller.php", `<?php
function describe(Widget $w) {
	return $w->label();
}
`)

	cfg := config.DefaultConfig()
	emit := issue.NewSliceEmitter()
	results, store, _ := AnalyzeFiles(cfg, []string{classFile, callerFile}, emit)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.ParseErr)
	}

	fd, ok := store.GetFunction(symbols.FQNOf("describe"))
	require.True(t, ok)
	assert.True(t, phptype.IsString(fd.GetInferredReturnType()))

	for _, i := range emit.Sorted() {
		assert.NotEqual(t, issue.UnknownClass, i.Kind, i.Message)
	}
}

func TestAnalyzeFilesReportsPerFileParseError(t *testing.T) {
	dir := t.TempDir()
	good := writeTempPHP(t, dir, "good.php", "<?php\nfunction ok() { return 1; }\n")

	cfg := config.DefaultConfig()
	emit := issue.NewSliceEmitter()
	results, _, _ := AnalyzeFiles(cfg, []string{good, filepath.Join(dir, "missing.php")}, emit)

	require.Len(t, results, 2)
	var sawErr bool
	for _, r := range results {
		if r.ParseErr != nil {
			sawErr = true
		}
	}
	assert.True(t, sawErr)
}
