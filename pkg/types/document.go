// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BlockKind tags the variant held by a Block.
type BlockKind string

const (
	BlockHeading      BlockKind = "heading"
	BlockBulletedItem BlockKind = "bulleted_list_item"
	BlockParagraph    BlockKind = "paragraph"
	BlockImage        BlockKind = "image"
)

// Block is one typed unit of a converted document. Level is set for headings
// (1 or 2), URL for images, Text for everything else.
type Block struct {
	Kind  BlockKind `json:"kind" yaml:"kind"`
	Level int       `json:"level,omitempty" yaml:"level,omitempty"`
	Text  string    `json:"text,omitempty" yaml:"text,omitempty"`
	URL   string    `json:"url,omitempty" yaml:"url,omitempty"`
}

// Heading returns a heading block of the given level.
func Heading(level int, text string) Block {
	return Block{Kind: BlockHeading, Level: level, Text: text}
}

// BulletedItem returns a bulleted list item block.
func BulletedItem(text string) Block {
	return Block{Kind: BlockBulletedItem, Text: text}
}

// Paragraph returns a paragraph block. An empty text is a spacer.
func Paragraph(text string) Block {
	return Block{Kind: BlockParagraph, Text: text}
}

// Image returns an external image block.
func Image(url string) Block {
	return Block{Kind: BlockImage, URL: url}
}
