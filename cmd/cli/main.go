package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"craftcheck/adapters/excel"
	"craftcheck/app"
	"craftcheck/domain/crafting"
	"craftcheck/internal/config"
	"craftcheck/internal/container"
	"craftcheck/internal/preprocess"
)

// shared flags
var (
	materialsFile    string
	classifierConfig string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "craftcheck-cli",
		Short: "Validate crafting layouts and inspect encoded tensors offline",
	}
	rootCmd.PersistentFlags().StringVar(&materialsFile, "materials", "", "material catalog (.json, .yaml, .xlsx, .csv); overrides MATERIALS_FILE")
	rootCmd.PersistentFlags().StringVar(&classifierConfig, "classifier-config", "", "classifier YAML; overrides CLASSIFIER_CONFIG")

	rootCmd.AddCommand(
		newValidateCmd(),
		newBatchCmd(),
		newEncodeCmd(),
		newStatusCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildContainer wires an in-memory container; the CLI never touches postgres
func buildContainer(ctx context.Context, preload bool) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Database.URL = ""
	cfg.Data.Preload = preload
	if materialsFile != "" {
		cfg.Data.MaterialsFile = materialsFile
	}
	if classifierConfig != "" {
		cfg.Data.ClassifierConfig = classifierConfig
		if cfg.Classifier, err = config.LoadClassifierConfigs(classifierConfig); err != nil {
			return nil, err
		}
	}

	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func readRequest(path string) (app.LayoutRequest, error) {
	var req app.LayoutRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return req, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [request.json]",
		Short: "Classify a single layout",
		Long: `Classify one layout request and print the result as JSON.

The file holds {"discipline": "smithing", "smithing": {...}}.

Example: craftcheck-cli validate layout.json --materials materials.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c, err := buildContainer(ctx, false)
			if err != nil {
				return err
			}
			defer c.Close()

			res := c.Service.Validate(ctx, req)
			if err := printJSON(res); err != nil {
				return err
			}
			if res.Failed() {
				return fmt.Errorf("validation failed: %s", res.Error)
			}
			return nil
		},
	}
}

func newBatchCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "batch [requests.json]",
		Short: "Classify a JSON array of layouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var reqs []app.LayoutRequest
			if err := json.Unmarshal(data, &reqs); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			ctx := cmd.Context()
			c, err := buildContainer(ctx, true)
			if err != nil {
				return err
			}
			defer c.Close()

			results, err := c.Service.ValidateBatch(ctx, reqs)
			if err != nil {
				return err
			}
			if !quiet {
				if err := printJSON(results); err != nil {
					return err
				}
			}

			valid, failed := 0, 0
			for _, r := range results {
				switch {
				case r.Failed():
					failed++
				case r.Valid:
					valid++
				}
			}
			fmt.Fprintf(os.Stderr, "%d layouts: %d valid, %d invalid, %d failed\n",
				len(results), valid, len(results)-valid-failed, failed)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the summary line")
	return cmd
}

func newEncodeCmd() *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "encode [request.json]",
		Short: "Print or export the tensor a layout encodes to",
		Long: `Run only the preprocessing step and dump the tensor.

Without --xlsx the tensor is printed as tab separated rows. With --xlsx it is
written to a workbook sheet named after the discipline, for comparison against
reference dumps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args[0])
			if err != nil {
				return err
			}
			c, err := buildContainer(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer c.Close()

			tensor, shape, err := c.Service.Encode(req)
			if err != nil {
				return err
			}
			headers := preprocess.DumpHeaders(shape)
			rows, err := preprocess.DumpRows(tensor, shape)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				w := excel.NewTensorWriter()
				defer w.Close()
				if err := w.WriteTensor(req.Discipline, headers, rows); err != nil {
					return err
				}
				if err := w.SaveAs(xlsxPath); err != nil {
					return err
				}
				fmt.Printf("Wrote %d values (%d non-zero) to %s\n", len(tensor), preprocess.NonZero(tensor), xlsxPath)
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(headers, "\t"))
			for _, row := range rows {
				cells := make([]string, len(row))
				for i, v := range row {
					cells[i] = fmt.Sprint(v)
				}
				fmt.Fprintln(tw, strings.Join(cells, "\t"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the tensor to this .xlsx file instead of stdout")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Initialize every classifier and report its state",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer c.Close()

			status := c.Service.Status()
			disciplines := make([]crafting.Discipline, 0, len(status))
			for d := range status {
				disciplines = append(disciplines, d)
			}
			sort.Slice(disciplines, func(i, j int) bool { return disciplines[i] < disciplines[j] })

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DISCIPLINE\tENABLED\tLOADED\tHEALTHY\tTHRESHOLD\tMODEL")
			for _, d := range disciplines {
				s := status[d]
				fmt.Fprintf(tw, "%s\t%t\t%t\t%t\t%.2f\t%s\n",
					d, s.Enabled, s.Loaded, s.BackendHealthy, s.Threshold, s.ModelPath)
			}
			return tw.Flush()
		},
	}
}
