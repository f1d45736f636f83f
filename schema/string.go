package schema

type String string

// NewString returns a pointer String
func NewString(s string) *String {
	v := String(s)
	return &v
}

func (s String) Attachement() *Attachement {
	return nil
}

func (s String) String() string {
	return string(s)
}

// Unmarshal keeps the raw model output as is
func (s *String) Unmarshal(bs []byte) error {
	*s = String(bs)
	return nil
}
