package main

import (
	"github.com/spf13/cobra"
)

var (
	callModel        string
	callSystem       string
	callMessagesFile string
	callSchemaFile   string
	callOut          string
)

var textCmd = &cobra.Command{
	Use:   "text [prompt...]",
	Short: "Request a plain-text completion",
	Example: `  listingai text --model claude "Describe a two-bedroom loft in Lisbon"
  listingai text --messages conversation.yaml --out reply.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		messages, err := loadConversation(callMessagesFile, callSystem, args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		router, err := newRouter()
		if err != nil {
			return err
		}

		text, err := router.CallText(cmd.Context(), callModel, messages)
		if err != nil {
			return err
		}
		return writeOutput(callOut, []byte(text+"\n"), cmd.OutOrStdout())
	},
}

var structuredCmd = &cobra.Command{
	Use:   "structured [prompt...]",
	Short: "Request JSON output shaped by a schema",
	Example: `  listingai structured --schema listing.schema.json "Title and three highlights for a loft"
  listingai structured --model local --schema listing.yaml --messages conversation.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		messages, err := loadConversation(callMessagesFile, callSystem, args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		schema, err := loadSchema(callSchemaFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		router, err := newRouter()
		if err != nil {
			return err
		}

		data, err := router.CallStructured(cmd.Context(), callModel, messages, schema)
		if err != nil {
			return err
		}

		out, err := encodeJSON(data)
		if err != nil {
			return err
		}
		return writeOutput(callOut, out, cmd.OutOrStdout())
	},
}

func addCallFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&callModel, "model", "m", "", "registry name (default is models.default)")
	cmd.Flags().StringVar(&callSystem, "system", "", "system prompt placed before the conversation")
	cmd.Flags().StringVar(&callMessagesFile, "messages", "", "YAML or JSON conversation file ('-' for stdin)")
	cmd.Flags().StringVarP(&callOut, "out", "o", "", "write the result to this file instead of stdout")
}

func init() {
	addCallFlags(textCmd)
	addCallFlags(structuredCmd)
	structuredCmd.Flags().StringVar(&callSchemaFile, "schema", "", "YAML or JSON schema file ('-' for stdin)")
	_ = structuredCmd.MarkFlagRequired("schema")

	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(structuredCmd)
}
