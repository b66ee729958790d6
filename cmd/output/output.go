/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package output

import (
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

const (
	FormatYaml = "yaml"
	FormatJson = "json"

	OptionName = "output"
	OptionHelp = "Output format: yaml or json"
)

// ErrUnknownFormat returned for output formats other than yaml and json
type ErrUnknownFormat struct {
	Format string
}

func (e ErrUnknownFormat) Error() string {
	return fmt.Sprintf("Unknown output format: %s", e.Format)
}

// Print writes v to out as a YAML document or as indented JSON
func Print(out io.Writer, format string, v interface{}) error {
	switch format {
	case FormatYaml, "":
		result, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "---\n%s", result)
		return err
	case FormatJson:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	default:
		return ErrUnknownFormat{Format: format}
	}
}
