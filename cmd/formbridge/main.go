package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	cli "github.com/formbridge/formbridge/internal/cli"
)

func main() {
	root := &cobra.Command{
		Use:   "formbridge",
		Short: "Compile REST API metadata into input fields and execute requests",
	}

	root.AddCommand(newFieldsCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newDocsCmd())

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func newFieldsCmd() *cobra.Command {
	var metaPath string
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Compile and dump the generated field descriptors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunFields(metaPath, format, out)
		},
	}
	cmd.Flags().StringVar(&metaPath, "metadata", "", "Metadata document (json)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json|yaml)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (defaults to stdout)")
	_ = cmd.MarkFlagRequired("metadata")
	return cmd
}

func newRunCmd() *cobra.Command {
	var p cli.RunOperationParams

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one operation against the configured API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunOperation(p)
		},
	}
	cmd.Flags().StringVarP(&p.ConfigPath, "config", "c", "", "Path to formbridge.yaml config")
	cmd.Flags().StringVar(&p.Resource, "resource", "", "Resource value")
	cmd.Flags().StringVar(&p.Operation, "operation", "", "Operation value")
	cmd.Flags().StringArrayVar(&p.Params, "param", nil, "Field value as fieldId=value (repeatable)")
	cmd.Flags().BoolVarP(&p.Verbose, "verbose", "v", false, "Log dispatch details to stderr")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newExtractCmd() *cobra.Command {
	var input string
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a metadata document from an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunExtract(input, format, out)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file (yaml/json) or URL")
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json|yaml)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (defaults to stdout)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file (yaml/json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newDocsCmd() *cobra.Command {
	var metaPath string
	var out string

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Render a markdown reference of the generated fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunDocs(metaPath, out)
		},
	}
	cmd.Flags().StringVar(&metaPath, "metadata", "", "Metadata document (json)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (defaults to stdout)")
	_ = cmd.MarkFlagRequired("metadata")
	return cmd
}
