package driver

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scriptDir = "testdata/scripts"

// expectation is one annotation in a script:
//
//	# expect: <text the JavaScript contains>
//	# expect_compile_error: <message substring>
//	# expect_type_error: <checker message substring>
type expectation struct {
	kind  string
	value string
}

var expectRe = regexp2.MustCompile(`^#\s*(expect(?:_compile_error|_type_error)?):\s*(.*)$`, regexp2.None)

func parseExpectations(t *testing.T, content string) []expectation {
	t.Helper()
	var out []expectation
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		m, err := expectRe.FindStringMatch(scanner.Text())
		require.NoError(t, err)
		if m == nil {
			continue
		}
		out = append(out, expectation{
			kind:  m.GroupByNumber(1).String(),
			value: strings.TrimSpace(m.GroupByNumber(2).String()),
		})
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestScripts(t *testing.T) {
	entries, err := os.ReadDir(scriptDir)
	require.NoError(t, err)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".ql" {
			continue
		}
		path := filepath.Join(scriptDir, entry.Name())
		t.Run(entry.Name(), func(t *testing.T) {
			content, err := os.ReadFile(path)
			require.NoError(t, err)
			expects := parseExpectations(t, string(content))
			require.NotEmpty(t, expects, "no expectation comment found (e.g., # expect: text)")

			res, err := CompileFile(path, DefaultConfig())
			for _, e := range expects {
				switch e.kind {
				case "expect_compile_error":
					require.Error(t, err)
					assert.Contains(t, err.Error(), e.value)
				case "expect_type_error":
					require.NoError(t, err)
					var msgs []string
					for _, te := range res.TypeErrors {
						msgs = append(msgs, te.Msg)
					}
					assert.Contains(t, strings.Join(msgs, "\n"), e.value)
				default:
					require.NoError(t, err)
					assert.Contains(t, res.JavaScript, e.value)
				}
			}
		})
	}
}
