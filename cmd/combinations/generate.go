package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dianaantanyan/combinations-api/internal/combination"
	"github.com/dianaantanyan/combinations-api/internal/domain"
)

type generateOptions struct {
	counts   []int
	length   int
	strategy string
	max      uint64
}

// generateCmd runs the pure generation step locally, without a database.
func generateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the combinations for group sizes without storing them",
		Example: `  combinations generate --counts 1,2,1 --length 2
  combinations generate --counts 3,3,3 --length 3 --strategy backtrack`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.Flags().IntSliceVar(&opts.counts, "counts", nil, "group sizes, e.g. 1,2,1")
	cmd.Flags().IntVar(&opts.length, "length", 0, "number of distinct groups per combination")
	cmd.Flags().StringVar(&opts.strategy, "strategy", string(combination.StrategySubsets), "subsets or backtrack")
	cmd.Flags().Uint64Var(&opts.max, "max", 100000, "refuse results larger than this (0 disables)")
	_ = cmd.MarkFlagRequired("counts")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}

func runGenerate(stdout, stderr io.Writer, opts generateOptions) error {
	gen, err := combination.ForStrategy(combination.Strategy(strings.ToLower(opts.strategy)))
	if err != nil {
		return err
	}
	if opts.length <= 0 {
		return fmt.Errorf("length must be positive, got %d", opts.length)
	}

	p := message.NewPrinter(language.English)
	if opts.max > 0 {
		var sum uint64
		for _, n := range opts.counts {
			if n > 0 {
				sum += uint64(n)
			}
		}
		if sum > opts.max {
			return errors.New(p.Sprintf("counts derive %d items, limit is %d", sum, opts.max))
		}
		if total := combination.Count(opts.counts, opts.length); total > opts.max {
			return errors.New(p.Sprintf("result would hold %d combinations, limit is %d", total, opts.max))
		}
	}

	items, err := combination.DeriveItems(opts.counts)
	if err != nil {
		return err
	}
	combos := gen(items, opts.length)

	if err := json.NewEncoder(stdout).Encode(domain.ResultPayload{Combination: combos}); err != nil {
		return err
	}
	p.Fprintf(stderr, "%d combinations of %d items from %d groups\n", len(combos), len(items), len(opts.counts))
	return nil
}
