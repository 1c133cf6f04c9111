package pngtool

import (
	"fmt"

	"git.handmade.network/hmn/pngscope/src/pngstore"
	"github.com/spf13/cobra"
)

func addFilterFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int("color-type", 0, "Only stored images with this color type (0, 2, 3, 4 or 6)")
	flags.Int("bit-depth", 0, "Only stored images with this bit depth")
	flags.Int("interlace", 0, "Only stored images with this interlace method (0 or 1)")
	flags.Int("width-under", 0, "Only stored images narrower than this")
	flags.Int("height-under", 0, "Only stored images shorter than this")
	flags.String("chunk", "", "Only stored images containing a chunk of this type")
}

// filterFromFlags reads the flags added by addFilterFlags. Flags the user did
// not pass leave their part of the filter open.
func filterFromFlags(cmd *cobra.Command) (pngstore.Filter, error) {
	flags := cmd.Flags()
	var f pngstore.Filter

	intPtr := func(name string) (*int, error) {
		if !flags.Changed(name) {
			return nil, nil
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}

	var err error
	if f.ColorType, err = intPtr("color-type"); err != nil {
		return f, err
	}
	if f.BitDepth, err = intPtr("bit-depth"); err != nil {
		return f, err
	}
	if f.Interlace, err = intPtr("interlace"); err != nil {
		return f, err
	}
	if f.WidthUnder, err = flags.GetInt("width-under"); err != nil {
		return f, err
	}
	if f.HeightUnder, err = flags.GetInt("height-under"); err != nil {
		return f, err
	}
	if f.Chunk, err = flags.GetString("chunk"); err != nil {
		return f, err
	}

	if f.WidthUnder < 0 || f.HeightUnder < 0 {
		return f, fmt.Errorf("--width-under and --height-under must not be negative")
	}
	if f.Chunk != "" && len(f.Chunk) != 4 {
		return f, fmt.Errorf("chunk types are four letters long, got %q", f.Chunk)
	}
	return f, nil
}
