package config

import (
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"
)

const generatedHeader = `# doplug configuration.
# Place this file at <config dir>/doplug.toml. Every value below shows its
# built-in default; uncomment a line to change it. DOPLUG_* environment
# variables override this file.

`

// GenerateConfigContent renders the default configuration as a fully
// commented TOML document for 'doplug genconfig'.
func GenerateConfigContent() (string, error) {
	d := Defaults()
	data, err := gotoml.Marshal(d)
	if err != nil {
		return "", err
	}
	return generatedHeader + commentOutValues(string(data)), nil
}

// commentOutValues comments every assignment line, keeping section headers,
// blank lines and existing comments as-is.
func commentOutValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}
		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
