package cli

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// readMapping loads a flat mapping from a YAML or JSON file. "-" reads
// standard input.
func readMapping(path string, stdin io.Reader) (map[string]interface{}, error) {
	if path == "" {
		return nil, fmt.Errorf("an input file is required")
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	values := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s holds no values", path)
	}
	return values, nil
}
