package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"genomecorrupt/internal/ingest"
	"genomecorrupt/internal/modules"
)

var canonicalVariants bool

var canonicalCmd = &cobra.Command{
	Use:   "canonical [modules.yaml]",
	Short: "Print the most frequent marker composition of every module",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Inputs.Modules
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no module mapping given (argument or inputs.modules)")
		}
		mm, err := ingest.LoadModules(path)
		if err != nil {
			return err
		}
		return writeCanonical(cmd.OutOrStdout(), modules.CountVariants(mm.Order, mm.Decompositions), canonicalVariants)
	},
}

func init() {
	canonicalCmd.Flags().BoolVar(&canonicalVariants, "variants", false, "List every variant with its count instead")
}

// writeCanonical emits an ordered YAML mapping of module to markers, or of
// module to variant key to count.
func writeCanonical(w io.Writer, counter *modules.VariantCounter, variants bool) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	if variants {
		for _, name := range counter.Modules() {
			inner := &yaml.Node{Kind: yaml.MappingNode}
			for _, v := range counter.Variants(name) {
				inner.Content = append(inner.Content, scalar(v.Key), scalar(fmt.Sprint(v.Count)))
			}
			root.Content = append(root.Content, scalar(name), inner)
		}
	} else {
		canonical := counter.Canonical()
		for _, name := range canonical.Names() {
			markers, _ := canonical.Lookup(name)
			seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, m := range markers {
				seq.Content = append(seq.Content, scalar(m))
			}
			root.Content = append(root.Content, scalar(name), seq)
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}
