package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/veryl-lang/veryl/internal/symbol"
)

var (
	dumpSymbolTable    bool
	dumpAssignList     bool
	dumpNamespaceTable bool
	dumpTypeDAG        bool
	dumpAttributeTable bool
	dumpUnsafeTable    bool
	dumpFormat         string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump analyzer internal tables",
	Long: `dump prints the analyzer's internal tables, the Go analogue of
cmd_dump.rs. type-dag, attribute-table and unsafe-table are not tracked
by this analyzer and print an explicit stub notice instead of invented
output.`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().BoolVar(&dumpSymbolTable, "symbol-table", false, "dump the global symbol table")
	dumpCmd.Flags().BoolVar(&dumpAssignList, "assign-list", false, "dump the assignment list")
	dumpCmd.Flags().BoolVar(&dumpNamespaceTable, "namespace-table", false, "dump the namespace table")
	dumpCmd.Flags().BoolVar(&dumpTypeDAG, "type-dag", false, "dump the type dependency DAG (not tracked)")
	dumpCmd.Flags().BoolVar(&dumpAttributeTable, "attribute-table", false, "dump the attribute table (not tracked)")
	dumpCmd.Flags().BoolVar(&dumpUnsafeTable, "unsafe-table", false, "dump the unsafe-value table (not tracked)")
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "text", `output format: "text" or "yaml"`)
}

const notTracked = "not tracked by this analyzer"

// runDump mirrors CmdDump::exec's sequence of table printouts. Since
// grammar/parsing is out of this repository's scope, no parse pipeline
// runs first: the symbol-table and namespace-table sections both print
// the Dump of a freshly created, empty symbol table.
func runDump(cmd *cobra.Command, args []string) error {
	table := symbol.New()

	sections := map[string]string{}
	if dumpSymbolTable {
		sections["symbol_table"] = table.Dump()
	}
	if dumpAssignList {
		sections["assign_list"] = "" // no assignment tracking beyond the symbol table itself
	}
	if dumpNamespaceTable {
		sections["namespace_table"] = table.Dump()
	}
	if dumpTypeDAG {
		sections["type_dag"] = notTracked
	}
	if dumpAttributeTable {
		sections["attribute_table"] = notTracked
	}
	if dumpUnsafeTable {
		sections["unsafe_table"] = notTracked
	}

	if dumpFormat == "yaml" {
		out, err := yaml.Marshal(sections)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}

	for _, name := range []string{"symbol_table", "assign_list", "namespace_table", "type_dag", "attribute_table", "unsafe_table"} {
		if text, ok := sections[name]; ok {
			fmt.Println(text)
		}
	}
	return nil
}
