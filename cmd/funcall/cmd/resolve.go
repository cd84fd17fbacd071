package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/funcall/internal/call"
	"github.com/funvibe/funcall/internal/pytypes"
	"github.com/funvibe/funcall/internal/types"
	"github.com/funvibe/funcall/pkg/funcall"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <function> [arg]... [name=arg]...",
	Short: "Dry-run overload resolution against literal arguments",
	Long: `resolve builds the function and its overloads from the manifest and
reports which implementation a call with the given arguments would
dispatch to. Arguments are literals: integers, floats, true/false,
none, or strings; name=value passes a keyword argument.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fn, ok := mf.Function(args[0])
		if !ok {
			return fmt.Errorf("function %q not found in manifest", args[0])
		}
		s, err := fn.Signature(host)
		if err != nil {
			return fmt.Errorf("building signature: %w", err)
		}
		defaults, err := fn.DefaultArgs()
		if err != nil {
			return fmt.Errorf("decoding defaults: %w", err)
		}

		stub := func(args []types.Value) (types.Value, error) {
			return pytypes.None(), nil
		}
		f, err := funcall.Def(fn.Name, s, stub, defaults...)
		if err != nil {
			return fmt.Errorf("defining %s: %w", fn.Name, err)
		}

		overloads, err := fn.OverloadSignatures(host)
		if err != nil {
			return fmt.Errorf("building overload signatures: %w", err)
		}
		impls := make(map[*funcall.Function]int, len(overloads))
		for i, osig := range overloads {
			impl, err := f.Overload(osig, stub)
			if err != nil {
				return fmt.Errorf("registering overload %s%s: %w", fn.Name, osig.String(), err)
			}
			impls[impl] = i
		}

		callArgs := parseCallArgs(args[1:])

		chosen, err := f.Resolve(callArgs...)
		if err != nil {
			return fmt.Errorf("resolution failed: %w", err)
		}
		if chosen == f {
			fmt.Printf("-> base implementation %s\n", bold(f.String()))
			return nil
		}
		fmt.Printf("-> overload %d: %s\n", impls[chosen], bold(chosen.String()))
		return nil
	},
}

// parseCallArgs turns CLI literals into call arguments. A token with an "="
// before any quote is a keyword argument.
func parseCallArgs(tokens []string) []call.Arg {
	args := make([]call.Arg, 0, len(tokens))
	for _, tok := range tokens {
		if i := strings.IndexByte(tok, '='); i > 0 && !strings.ContainsAny(tok[:i], `"'`) {
			args = append(args, call.Kw(tok[:i], parseLiteral(tok[i+1:])))
			continue
		}
		args = append(args, call.Pos(parseLiteral(tok)))
	}
	return args
}

func parseLiteral(tok string) types.Value {
	switch tok {
	case "true":
		return pytypes.Bool(true)
	case "false":
		return pytypes.Bool(false)
	case "none", "null":
		return pytypes.None()
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return pytypes.Int(n)
	}
	if x, err := strconv.ParseFloat(tok, 64); err == nil {
		return pytypes.Float(x)
	}
	return pytypes.Str(strings.Trim(tok, `"'`))
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
