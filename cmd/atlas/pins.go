package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/atlas"
	"github.com/eringen/atlas/pin"
)

var pinsCmd = &cobra.Command{
	Use:   "pins",
	Short: "Inspect and move the pin collection",
}

var pinsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a pins.json document against the pin schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		pins, err := pin.Decode(data)
		if err != nil {
			var verr *pin.ValidationError
			if errors.As(err, &verr) && verr.Index >= 0 {
				return fmt.Errorf("%s: record %d: %s %s", args[0], verr.Index, verr.Field, verr.Reason)
			}
			return fmt.Errorf("%s: %w", args[0], err)
		}
		linked := 0
		for _, p := range pins {
			if p.HasLink() {
				linked++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pins, %d linked\n", args[0], len(pins), linked)
		return nil
	},
}

var migrateFlags struct {
	from string
	to   string
}

var pinsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy pins and cover positions between store backends",
	Example: `  atlas pins migrate --from json:data --to sqlite:data/atlas.db
  atlas pins migrate --from bolt:data/atlas.bolt --to json:backup`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFlags.from == "" || migrateFlags.to == "" {
			return errors.New("both --from and --to are required")
		}
		return migrate(cmd, migrateFlags.from, migrateFlags.to)
	},
}

func init() {
	pinsMigrateCmd.Flags().StringVar(&migrateFlags.from, "from", "", "source store as backend:path")
	pinsMigrateCmd.Flags().StringVar(&migrateFlags.to, "to", "", "destination store as backend:path")
	pinsCmd.AddCommand(pinsValidateCmd)
	pinsCmd.AddCommand(pinsMigrateCmd)
}

func migrate(cmd *cobra.Command, from, to string) error {
	src, err := atlas.OpenStore(atlas.ParseStoreURL(from))
	if err != nil {
		return fmt.Errorf("open %s: %w", from, err)
	}
	defer src.Close()
	dst, err := atlas.OpenStore(atlas.ParseStoreURL(to))
	if err != nil {
		return fmt.Errorf("open %s: %w", to, err)
	}
	defer dst.Close()

	if err := atlas.CopyStore(dst, src); err != nil {
		return err
	}
	pins, err := dst.LoadPins()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "copied %d pins from %s to %s\n", len(pins), from, to)
	return nil
}
