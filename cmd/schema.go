package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"esl-middleware/core/dbf"

	"github.com/spf13/cobra"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema <file.dbf>",
	Short: "Dump the structure of a table file",
	Long: `Parses the header and field descriptors of a table file and prints them,
without reading any records. Useful for checking what a POS export
actually contains before wiring it up.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		info, err := dbf.Schema(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Printf("Table:         %s\n", info.Path)
		fmt.Printf("Version:       0x%02X\n", info.Version)
		fmt.Printf("Records:       %d\n", info.RecordCount)
		fmt.Printf("Record length: %d bytes\n", info.RecordLength)
		fmt.Printf("Fields (%d):\n", len(info.Fields))
		for _, f := range info.Fields {
			fmt.Printf("  %-11s %s  len=%-3d dec=%d\n", f.Name, f.TypeName, f.Length, f.DecimalCount)
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().Bool("json", false, "print the table structure as JSON")
	RootCmd.AddCommand(schemaCmd)
}
