package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PlaceholderImage is substituted when metadata carries no usable image.
const PlaceholderImage = "https://placehold.co/500x500/1a1a1a/ffffff?text=No+Image"

const defaultDescription = "No description."

// Attribute is a single trait of an item, order-preserving.
type Attribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// Metadata is the canonical item-metadata record with every field filled.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Attributes  []Attribute `json:"attributes"`
	ImageURL    string      `json:"image"`
}

// rawMetadata mirrors the loose off-chain JSON schema; every field is
// optional and filled with defaults at the normalization boundary.
type rawMetadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
}

// Normalize maps a raw metadata document onto the canonical record. It
// never fails: unparseable input and missing fields degrade to defaults.
// sourceBase is the gateway prefix the document was fetched from and
// anchors content-addressed or relative image references.
func Normalize(raw []byte, sourceBase string, tokenID uint64) Metadata {
	var doc rawMetadata
	// A decode error leaves doc zero-valued, which the defaults cover.
	_ = json.Unmarshal(raw, &doc)

	meta := Metadata{
		Name:        doc.Name,
		Description: doc.Description,
		Attributes:  doc.Attributes,
		ImageURL:    resolveImage(doc.Image, sourceBase),
	}
	if meta.Name == "" {
		meta.Name = fmt.Sprintf("Pulse NFT #%d", tokenID)
	}
	if meta.Description == "" {
		meta.Description = defaultDescription
	}
	if meta.Attributes == nil {
		meta.Attributes = []Attribute{}
	}
	return meta
}

func resolveImage(image, sourceBase string) string {
	switch {
	case image == "":
		return PlaceholderImage
	case strings.HasPrefix(image, ipfsScheme):
		// The image lives next to the metadata document on whichever
		// gateway served it; keep only the filename.
		name := image
		if i := strings.LastIndex(image, "/"); i >= 0 {
			name = image[i+1:]
		}
		return sourceBase + "/" + name
	case !strings.HasPrefix(image, "http"):
		return sourceBase + "/" + image
	default:
		return image
	}
}
