package note

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Wire constants of the container.
const (
	FileTypeMarker  = "note"
	SignaturePrefix = "SN_FILE_VER_"
	Signature       = "SN_FILE_VER_20230015"
	TailMarker      = "tail"

	headerOffset = 24 // marker (4) + signature (20)

	LayerProtocolRLE = "RATTA_RLE"
)

// Layer names in the fixed order every page metadata block lists them.
// Only MAINLAYER and BGLAYER carry content in generated files.
var AllLayerNames = []string{"MAINLAYER", "LAYER1", "LAYER2", "LAYER3", "BGLAYER"}

func (d *Document) recognType() string {
	if d.Realtime {
		return "1"
	}
	return "0"
}

func (d *Document) recognLanguage() string {
	if d.Realtime {
		return d.Language
	}
	return "none"
}

// headerTags builds the header block records. The two shapes carry
// different tag sets in different orders; both sequences come from
// device-authored files and must not be reordered.
func (d *Document) headerTags() Tags {
	if d.Shape == ShapeImageTemplate {
		return Tags{
			{"FILE_TYPE", "NOTE"},
			{"APPLY_EQUIPMENT", d.Device.Equipment},
			{"FINALOPERATION_PAGE", "1"},
			{"FINALOPERATION_LAYER", "1"},
			{"DEVICE_DPI", "0"},
			{"SOFT_DPI", "0"},
			{"FILE_PARSE_TYPE", "0"},
			{"RATTA_ETMD", "0"},
			{"FILE_ID", d.FileID},
			{"FILE_RECOGN_TYPE", d.recognType()},
			{"FILE_RECOGN_LANGUAGE", d.recognLanguage()},
			{"HORIZONTAL_CHECK", "0"},
			{"IS_OLD_APPLY_EQUIPMENT", "1"},
			{"ANTIALIASING_CONVERT", "2"},
		}
	}
	return Tags{
		{"MODULE_LABEL", "none"},
		{"FILE_TYPE", "NOTE"},
		{"APPLY_EQUIPMENT", d.Device.Equipment},
		{"FINALOPERATION_PAGE", strconv.Itoa(len(d.Pages))},
		{"FINALOPERATION_LAYER", "1"},
		{"DEVICE_DPI", "0"},
		{"SOFT_DPI", "0"},
		{"FILE_PARSE_TYPE", "0"},
		{"RATTA_ETMD", "0"},
		{"APP_VERSION", "0"},
		{"FILE_ID", d.FileID},
		{"FILE_RECOGN_TYPE", d.recognType()},
		{"FILE_RECOGN_LANGUAGE", d.recognLanguage()},
		{"PDFSTYLE", d.pdfStyle()},
		{"PDFSTYLEMD5", d.pdfStyleMD5()},
		{"STYLEUSAGETYPE", "2"},
		{"HIGHLIGHTINFO", "0"},
		{"HORIZONTAL_CHECK", "0"},
		{"IS_OLD_APPLY_EQUIPMENT", "1"},
		{"ANTIALIASING_CONVERT", "2"},
	}
}

// layerTags builds a layer metadata block. bitmapAddr is the absolute
// address of the layer content block, 0 for absent layers.
func layerTags(name string, bitmapAddr uint32) Tags {
	return Tags{
		{"LAYERTYPE", "NOTE"},
		{"LAYERPROTOCOL", LayerProtocolRLE},
		{"LAYERNAME", name},
		{"LAYERPATH", "0"},
		{"LAYERBITMAP", strconv.FormatUint(uint64(bitmapAddr), 10)},
		{"LAYERVECTORGRAPH", "0"},
		{"LAYERRECOGN", "0"},
	}
}

// layerDescriptor mirrors the device's LAYERINFO JSON entry. Field
// order matters: the serialized form must match device files byte for
// byte.
type layerDescriptor struct {
	LayerID           int    `json:"layerId"`
	Name              string `json:"name"`
	IsBackgroundLayer bool   `json:"isBackgroundLayer"`
	IsAllowAdd        bool   `json:"isAllowAdd"`
	IsCurrentLayer    bool   `json:"isCurrentLayer"`
	IsVisible         bool   `json:"isVisible"`
	IsDeleted         bool   `json:"isDeleted"`
	IsAllowUp         bool   `json:"isAllowUp"`
	IsAllowDown       bool   `json:"isAllowDown"`
}

// layerInfoValue serializes the five layer descriptors and substitutes
// '#' for ':' AFTER serialization so the value survives the tag
// grammar. Auxiliary layers 1-3 are marked deleted, main is current,
// background allows additions.
func layerInfoValue() string {
	descriptors := []layerDescriptor{
		{LayerID: 3, Name: "Layer 3", IsVisible: true, IsDeleted: true},
		{LayerID: 2, Name: "Layer 2", IsVisible: true, IsDeleted: true},
		{LayerID: 1, Name: "Layer 1", IsVisible: true, IsDeleted: true},
		{LayerID: 0, Name: "Main Layer", IsCurrentLayer: true, IsVisible: true},
		{LayerID: -1, Name: "Background Layer", IsBackgroundLayer: true, IsAllowAdd: true, IsVisible: true},
	}
	data, err := json.Marshal(descriptors)
	if err != nil {
		// static input, cannot fail
		panic(err)
	}
	return strings.ReplaceAll(string(data), ":", "#")
}

// layerAddresses holds the metadata block addresses of one page's
// layers, 0 for the three unused auxiliary layers.
type layerAddresses map[string]uint32

// pageTags builds the page metadata block for page p. As with headers,
// the two shapes order their records differently and the template
// shape omits the external-link and id-table records.
func (d *Document) pageTags(p *Page, layers layerAddresses) Tags {
	layerRecords := make(Tags, 0, len(AllLayerNames))
	for _, name := range AllLayerNames {
		layerRecords = append(layerRecords, Tag{name, strconv.FormatUint(uint64(layers[name]), 10)})
	}

	if d.Shape == ShapeImageTemplate {
		tags := Tags{
			{"PAGESTYLE", d.pageStyle(p)},
			{"PAGESTYLEMD5", d.pageStyleMD5(p)},
			{"LAYERSEQ", "MAINLAYER,BGLAYER"},
			{"PAGEID", p.ID},
		}
		tags = append(tags, layerRecords...)
		return append(tags, Tags{
			{"TOTALPATH", "0"},
			{"THUMBNAILTYPE", "0"},
			{"RECOGNSTATUS", "0"},
			{"RECOGNTEXT", "0"},
			{"RECOGNFILE", "0"},
			{"LAYERINFO", layerInfoValue()},
			{"RECOGNTYPE", "0"},
			{"RECOGNFILESTATUS", "0"},
			{"RECOGNLANGUAGE", "none"},
			{"ORIENTATION", "1000"},
			{"PAGETEXTBOX", "0"},
			{"DISABLE", "none"},
		}...)
	}

	tags := Tags{
		{"PAGESTYLE", d.pageStyle(p)},
		{"PAGESTYLEMD5", d.pageStyleMD5(p)},
		{"LAYERINFO", layerInfoValue()},
		{"LAYERSEQ", "MAINLAYER,BGLAYER"},
	}
	tags = append(tags, layerRecords...)
	return append(tags, Tags{
		{"TOTALPATH", "0"},
		{"THUMBNAILTYPE", "0"},
		{"RECOGNSTATUS", "0"},
		{"RECOGNTEXT", "0"},
		{"RECOGNFILE", "0"},
		{"PAGEID", p.ID},
		{"RECOGNTYPE", "0"},
		{"RECOGNFILESTATUS", "0"},
		{"RECOGNLANGUAGE", "none"},
		{"EXTERNALLINKINFO", "0"},
		{"IDTABLE", "0"},
		{"ORIENTATION", "1000"},
		{"PAGETEXTBOX", "0"},
		{"DISABLE", "none"},
	}...)
}

// footerTags builds the footer address table. a collects everything
// planned earlier; the paginated shape additionally exposes the style
// list and the default white style.
func (d *Document) footerTags(a *addresses) Tags {
	var tags Tags
	for i, pageAddr := range a.page {
		tags = append(tags, Tag{"PAGE" + strconv.Itoa(i+1), strconv.FormatUint(uint64(pageAddr), 10)})
	}
	if d.Shape == ShapeImageTemplate {
		tags = append(tags, Tags{
			{"DIRTY", "0"},
			{"FILE_FEATURE", strconv.FormatUint(uint64(a.header), 10)},
		}...)
		p := d.Pages[0]
		return append(tags, Tag{d.styleKey(p), strconv.FormatUint(uint64(a.background[0]), 10)})
	}

	tags = append(tags, Tags{
		{"COVER_0", "0"},
		{"DIRTY", "0"},
		{"FILE_FEATURE", strconv.FormatUint(uint64(a.header), 10)},
		{"PDFSTYLELIST", strconv.FormatUint(uint64(a.styleList), 10)},
		{"STYLE_style_white_a5x2", strconv.FormatUint(uint64(a.defaultStyle), 10)},
	}...)
	for i, p := range d.Pages {
		tags = append(tags, Tag{d.styleKey(p), strconv.FormatUint(uint64(a.background[i]), 10)})
	}
	return tags
}
