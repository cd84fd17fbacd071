package cmd

import (
	"fmt"

	"github.com/funvibe/funcall/internal/seedcache"
	"github.com/funvibe/funcall/internal/sig"
	"github.com/spf13/cobra"
)

var hashNoCache bool

var hashCmd = &cobra.Command{
	Use:   "hash <function>",
	Short: "Show the perfect-hash keyword table for a function",
	Long: `hash builds the function's signature and prints the keyword table:
the seed and prime the search settled on, the table size, and the slot
each keyword name occupies. Results are memoized per keyword set in
.funcall/seeds.db so repeated runs skip the seed search report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fn, ok := mf.Function(args[0])
		if !ok {
			return fmt.Errorf("function %q not found in manifest", args[0])
		}
		s, err := fn.Signature(host)
		if err != nil {
			return fmt.Errorf("building signature: %w", err)
		}

		var names []string
		for i := 0; i < s.Len(); i++ {
			p := s.At(i)
			if p.Kind.Kw() && !p.Kind.Variadic() {
				names = append(names, p.Name)
			}
		}
		if len(names) == 0 {
			fmt.Printf("%s takes no keyword parameters; table is empty\n", fn.Name)
			return nil
		}

		source := "computed"
		if !hashNoCache {
			cache, err := seedcache.Open(".")
			if err != nil {
				return fmt.Errorf("opening seed cache: %w", err)
			}
			defer cache.Close()

			if _, _, ok, err := cache.Get(names); err != nil {
				return err
			} else if ok {
				source = "cached"
			} else if err := cache.Put(names, s.TableSize(), s.Seed(), s.Prime()); err != nil {
				return err
			}
		}

		fmt.Printf("%s keyword table (%s)\n", bold(fn.Name), source)
		fmt.Printf("  seed:  %#x\n", s.Seed())
		fmt.Printf("  prime: %d\n", s.Prime())
		fmt.Printf("  size:  %d slots\n\n", s.TableSize())
		mask := uint64(s.TableSize() - 1)
		for _, name := range names {
			slot := sig.HashString(name, s.Seed(), s.Prime()) & mask
			fmt.Printf("  %-12s -> slot %d\n", name, slot)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
	hashCmd.Flags().BoolVar(&hashNoCache, "no-cache", false, "skip the on-disk seed cache")
}
