package pngstore

import (
	"git.handmade.network/hmn/pngscope/src/db"
)

// Filter narrows down stored images. Nil and zero fields match everything.
type Filter struct {
	ColorType   *int
	BitDepth    *int
	Interlace   *int
	WidthUnder  int
	HeightUnder int
	Chunk       string

	Limit int // if zero, no limit
}

// Conditions translates the filter into WHERE predicates against png_info
// aliased as "png".
func (f Filter) Conditions() []db.Condition {
	var conds []db.Condition
	if f.ColorType != nil {
		conds = append(conds, db.Condition{SQL: "png.color_type = $?", Args: []any{*f.ColorType}})
	}
	if f.BitDepth != nil {
		conds = append(conds, db.Condition{SQL: "png.bit_depth = $?", Args: []any{*f.BitDepth}})
	}
	if f.Interlace != nil {
		conds = append(conds, db.Condition{SQL: "png.interlace_method = $?", Args: []any{*f.Interlace}})
	}
	if f.WidthUnder > 0 {
		conds = append(conds, db.Condition{SQL: "png.width < $?", Args: []any{f.WidthUnder}})
	}
	if f.HeightUnder > 0 {
		conds = append(conds, db.Condition{SQL: "png.height < $?", Args: []any{f.HeightUnder}})
	}
	if f.Chunk != "" {
		conds = append(conds, db.Condition{
			SQL:  "EXISTS (SELECT 1 FROM chunk_info AS c WHERE c.png_id = png.id AND c.chunk_type = $?)",
			Args: []any{f.Chunk},
		})
	}
	return conds
}

// RandomFilter picks images the viewer can show. The console can't show
// 16-bit images and needs them narrower than maxWidth.
func RandomFilter(console bool, maxWidth int) Filter {
	noInterlace := 0
	f := Filter{Interlace: &noInterlace, Limit: 1}
	if console {
		f.WidthUnder = maxWidth
	}
	return f
}
