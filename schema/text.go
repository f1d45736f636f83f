package schema

// Text is plain text content that can carry attachements, e.g. an instruction with images
type Text struct {
	Base
	Content string
}

func NewText(content string) *Text {
	return &Text{Content: content}
}

// WithImages attaches inline images
func (t *Text) WithImages(images ...Image) *Text {
	a := t.Attachement()
	if a == nil {
		a = new(Attachement)
	}
	a.Images = append(a.Images, images...)
	t.SetAttachement(a)
	return t
}

func (t Text) String() string {
	return t.Content
}
