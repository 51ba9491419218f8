package models

// Kind distinguishes displayed captions from non-display entries such as
// style or header blocks that some containers carry.
type Kind string

const (
	KindCaption Kind = "caption"
	KindMeta    Kind = "meta"
)

// Caption is one timed subtitle unit.
//
// Index is assigned by the parser (dense run starting at 1) and is the
// canonical ordering key; input indices are never trusted. Content may keep
// simple inline cues, Text is the markup-free variant.
type Caption struct {
	Index      int    `json:"index"`
	StartMS    int64  `json:"start_ms"`
	EndMS      int64  `json:"end_ms"`
	DurationMS int64  `json:"duration_ms"`
	Content    string `json:"content"`
	Text       string `json:"text"`
	Kind       Kind   `json:"kind"`
}

// CaptionDocument is an ordered, index-unique caption sequence. It lives for
// a single request/response cycle and is never persisted.
type CaptionDocument struct {
	Captions []Caption `json:"captions"`
}

// Displayable returns the captions that participate in the serialize and
// optimize paths (Kind == caption), in document order.
func (d *CaptionDocument) Displayable() []Caption {
	out := make([]Caption, 0, len(d.Captions))
	for _, c := range d.Captions {
		if c.Kind == KindCaption {
			out = append(out, c)
		}
	}
	return out
}

// CaptionContent is the optimize-path item: a caption's index plus the text
// under revision. Timings never travel through the optimizer.
type CaptionContent struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
}

// OptimizationBatch is one order-preserving, budget-bounded slice of a
// request's items. Batches of a request partition the submitted items
// exactly; no item is split across batches.
type OptimizationBatch struct {
	BatchNumber  int
	TotalBatches int
	Items        []CaptionContent
}
