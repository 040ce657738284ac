package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/flood-sim-gateway/internal/domain"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "simargs",
		Short:         "Inspect flood simulation engine arguments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(printCmd())
	return root
}

func printCmd() *cobra.Command {
	var (
		raw     bool
		inputs  domain.RasterInputs
		tempDir string
	)
	cmd := &cobra.Command{
		Use:   "print <request-file>",
		Short: "Validate a request and print the engine argument vector",
		Long: `Reads a /simulate request body from a JSON or YAML file ("-" for JSON on
stdin), validates it exactly as the gateway does and prints the positional
arguments in engine order. Requests without output_tif show a placeholder
temporary path because the real name is generated per run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readRequest(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			req, err := domain.ParseRequest(body)
			if err != nil {
				return fmt.Errorf("invalid request: %w", err)
			}

			output := req.OutputTIF
			if !req.PersistentOutput() {
				output = path.Join(tempDir, "sim-<id>.tif")
			}
			argv := domain.BuildArgs(inputs, output, req, domain.Encode(req.RainTimeseries, req.Pumps))

			if raw {
				for _, a := range argv {
					fmt.Fprintln(cmd.OutOrStdout(), a)
				}
				return nil
			}
			renderTable(cmd.OutOrStdout(), argv)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print one argument per line")
	cmd.Flags().StringVar(&inputs.Terrain, "terrain", "data/dem.tif", "terrain raster path")
	cmd.Flags().StringVar(&inputs.LandUse, "land-use", "data/lahan.tif", "land-use raster path")
	cmd.Flags().StringVar(&tempDir, "temp-dir", "result", "directory for temporary output rasters")
	return cmd
}

// readRequest returns the request as JSON. YAML files are converted so the
// gateway's JSON validator sees the same document.
func readRequest(stdin io.Reader, name string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml request: %w", err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert yaml request: %w", err)
		}
		return out, nil
	default:
		return data, nil
	}
}

func renderTable(w io.Writer, argv []string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "Argument", "Value"})
	for i, a := range argv {
		tw.AppendRow(table.Row{i + 1, domain.ArgNames[i], a})
	}
	tw.Render()
}
