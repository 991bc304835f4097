package dictionary_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sampleTOML = `
[[lexicon]]
lemma = "НОМЕР"
class = "noun"
gender = "masculine"
forms = ["НОМЕРА", "НОМЕРУ", "НОМЕРОМ"]

[[lexicon]]
lemma = "РЕГИСТРАЦИОННЫЙ"
class = "adjective"
forms = ["РЕГИСТРАЦИОННОГО", "РЕГИСТРАЦИОННАЯ"]

[[pattern]]
text = "регистрационный номер"
tag = "document"
abridges = ["РЕГ.НОМЕР"]

[[pattern]]
text = "российская федерация"
normal = true
acronym = "РФ"
acronym_smart = true
synonyms = ["россия"]
tag = "country"

[[pattern]]
text = "нижний новгород"
normal = true
std_abridges = true
`

const sampleText = `# cities
москва | city
санкт-петербург | city | ru

london | city | en
`

// writeFile writes content under dir and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
