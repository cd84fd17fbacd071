package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [function]",
	Short: "Show the signatures declared in the manifest",
	Long: `Without arguments, inspect lists every function in the manifest with
its signature. With a function name it prints the parameter layout in
detail: kinds, annotations, the required-parameter mask, and any
registered overload signatures.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, fn := range mf.Functions {
				s, err := fn.Signature(host)
				if err != nil {
					return fmt.Errorf("building signature for %s: %w", fn.Name, err)
				}
				fmt.Printf("%s%s\n", bold(fn.Name), s.String())
			}
			return nil
		}

		fn, ok := mf.Function(args[0])
		if !ok {
			return fmt.Errorf("function %q not found in manifest", args[0])
		}
		s, err := fn.Signature(host)
		if err != nil {
			return fmt.Errorf("building signature: %w", err)
		}

		fmt.Printf("%s%s\n\n", bold(fn.Name), s.String())
		for i := 0; i < s.Len(); i++ {
			p := s.At(i)
			typeName := "untyped"
			if p.Type != nil {
				typeName = p.Type.TypeName()
			}
			required := ""
			if s.Required()&p.OneHot() != 0 {
				required = "  required"
			}
			fmt.Printf("  [%d] %-12s %-10s %-8s%s\n", i, p.Name, p.Kind, typeName, required)
		}
		fmt.Printf("\n  required mask: %s\n", dim(fmt.Sprintf("%0*b", s.Len(), s.Required())))

		overloads, err := fn.OverloadSignatures(host)
		if err != nil {
			return fmt.Errorf("building overload signatures: %w", err)
		}
		if len(overloads) > 0 {
			fmt.Printf("\n  overloads:\n")
			for _, os := range overloads {
				fmt.Printf("    %s%s\n", fn.Name, os.String())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
