package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"primeforge/internal/seed"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create and convert master seeds",
	}
	cmd.AddCommand(seedNewCmd(), seedWordsCmd())
	return cmd
}

func seedNewCmd() *cobra.Command {
	var words bool
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Draw a fresh master seed from the OS entropy source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := seed.New()
			if err != nil {
				return err
			}
			defer s.Wipe()

			fmt.Printf("seed: %s\n", s.Hex())
			fmt.Printf("tag:  %s\n", s.Tag())
			if words {
				m, err := s.Mnemonic()
				if err != nil {
					return err
				}
				fmt.Printf("words: %s\n", m)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&words, "words", false, "also print the BIP-39 mnemonic")
	return cmd
}

func seedWordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "words <hex>",
		Short: "Print the BIP-39 mnemonic for a hex seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := seed.FromHex(args[0])
			if err != nil {
				return err
			}
			defer s.Wipe()

			m, err := s.Mnemonic()
			if err != nil {
				return err
			}
			fmt.Println(m)
			return nil
		},
	}
}
