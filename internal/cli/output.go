package cli

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// print writes v to the command's stdout: indented JSON with --json, YAML
// otherwise.
func (a *app) print(cmd *cobra.Command, v any) error {
	var (
		out []byte
		err error
	)
	if a.jsonMode {
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	} else {
		out, err = yaml.Marshal(v)
	}
	if err != nil {
		return sysError(fmt.Errorf("encode output: %w", err))
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
