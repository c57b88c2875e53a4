package note

import (
	"fmt"
	"math"
)

// addresses is the resolved address table of a planned file. Every
// value is the absolute byte offset of a length-prefix word.
type addresses struct {
	header       uint32
	styleList    uint32 // paginated shape only
	defaultStyle uint32 // paginated shape only
	background   []uint32
	mainContent  []uint32
	mainMeta     []uint32
	bgMeta       []uint32
	page         []uint32
}

// plan is the fully determined file layout: every block payload in file
// order plus the trailer address. Nothing is back-patched; the writer
// only streams what the planner computed.
type plan struct {
	blocks     [][]byte
	addr       addresses
	footerAddr uint32
	fileSize   int64
}

// layout runs the single forward pass of §layout: starting right after
// the marker and signature it reserves each block, computing its
// payload as it goes (payload lengths feed the accumulator, and every
// payload only references addresses resolved in earlier steps).
func (d *Document) layout() (*plan, error) {
	pl := &plan{}
	pos := int64(headerOffset)

	reserve := func(payload []byte) (uint32, error) {
		if pos > math.MaxUint32 {
			return 0, ErrAddressOverflow
		}
		addr := uint32(pos)
		pl.blocks = append(pl.blocks, payload)
		pos += 4 + int64(len(payload))
		return addr, nil
	}
	reserveTags := func(ts Tags) (uint32, error) {
		payload, err := EncodeTags(ts)
		if err != nil {
			return 0, err
		}
		return reserve(payload)
	}

	var err error
	if pl.addr.header, err = reserveTags(d.headerTags()); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	if d.Shape == ShapePaginated {
		if pl.addr.styleList, err = reserve(d.styleListPayload()); err != nil {
			return nil, err
		}
	}

	for _, p := range d.Pages {
		addr, err := reserve(p.Background)
		if err != nil {
			return nil, err
		}
		pl.addr.background = append(pl.addr.background, addr)
	}

	if d.Shape == ShapePaginated {
		if pl.addr.defaultStyle, err = reserve(emptyLayerRLE); err != nil {
			return nil, err
		}
	}

	for _, p := range d.Pages {
		ink := p.Ink
		if ink == nil {
			ink = emptyLayerRLE
		}
		addr, err := reserve(ink)
		if err != nil {
			return nil, err
		}
		pl.addr.mainContent = append(pl.addr.mainContent, addr)
	}

	for i := range d.Pages {
		mainAddr, err := reserveTags(layerTags("MAINLAYER", pl.addr.mainContent[i]))
		if err != nil {
			return nil, fmt.Errorf("page %d main layer: %w", i+1, err)
		}
		bgAddr, err := reserveTags(layerTags("BGLAYER", pl.addr.background[i]))
		if err != nil {
			return nil, fmt.Errorf("page %d background layer: %w", i+1, err)
		}
		pl.addr.mainMeta = append(pl.addr.mainMeta, mainAddr)
		pl.addr.bgMeta = append(pl.addr.bgMeta, bgAddr)
	}

	for i, p := range d.Pages {
		layers := layerAddresses{
			"MAINLAYER": pl.addr.mainMeta[i],
			"LAYER1":    0,
			"LAYER2":    0,
			"LAYER3":    0,
			"BGLAYER":   pl.addr.bgMeta[i],
		}
		addr, err := reserveTags(d.pageTags(p, layers))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pl.addr.page = append(pl.addr.page, addr)
	}

	if pl.footerAddr, err = reserveTags(d.footerTags(&pl.addr)); err != nil {
		return nil, fmt.Errorf("footer: %w", err)
	}

	// trailer: 'tail' marker + footer address word
	pl.fileSize = pos + 8
	return pl, nil
}
