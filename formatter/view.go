package formatter

import "github.com/giygas/druginfo/entities"

// TitlePrefix precedes the drug name in a document title.
const TitlePrefix = "Drug Information: "

// Document is a formatted result ready for rendering.
type Document struct {
	DrugName string
	Blocks   []Block
}

// NewDocument formats result. A nil result gives an empty document.
func NewDocument(result *entities.DrugInfoResult) Document {
	doc := Document{Blocks: Format(result)}
	if result != nil {
		doc.DrugName = result.DrugName
	}
	return doc
}

// Title returns the heading shown above the blocks.
func (d Document) Title() string {
	return TitlePrefix + d.DrugName
}

// View converts the document to its wire form.
func (d Document) View() entities.FormattedDocument {
	return entities.FormattedDocument{
		DrugName: d.DrugName,
		Title:    d.Title(),
		Blocks:   Views(d.Blocks),
	}
}

// Views converts blocks to their wire form, preserving order.
func Views(blocks []Block) []entities.BlockView {
	views := make([]entities.BlockView, 0, len(blocks))
	for _, b := range blocks {
		views = append(views, blockView(b))
	}
	return views
}

func blockView(b Block) entities.BlockView {
	view := entities.BlockView{Type: b.Kind().String()}
	switch block := b.(type) {
	case Heading:
		view.Text = block.Text
	case SideEffectsGroup:
		view.Chunks = block.Chunks
	case Paragraph:
		view.Spans = make([]entities.SpanView, len(block.Spans))
		for i, s := range block.Spans {
			view.Spans[i] = entities.SpanView{Kind: s.Kind.String(), Text: s.Text}
		}
	}
	return view
}

// CountByKind tallies blocks per kind.
func CountByKind(blocks []Block) map[BlockKind]int {
	counts := make(map[BlockKind]int, 3)
	for _, b := range blocks {
		counts[b.Kind()]++
	}
	return counts
}
