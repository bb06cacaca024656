package fdxb

// Bit is one demodulated symbol together with the sample span it covers.
type Bit struct {
	Value byte // 0 or 1
	Start int64
	End   int64
}

// Char returns the bit as '0' or '1'.
func (b Bit) Char() byte {
	return '0' + b.Value&1
}

// Annotation is a labelled sample range emitted by the decoder.
// Texts are ordered long, short, abbreviated.
type Annotation struct {
	Start int64
	End   int64
	Class AnnotationClass
	Texts []string
}

// Text returns the longest text variant.
func (a Annotation) Text() string {
	if len(a.Texts) == 0 {
		return ""
	}
	return a.Texts[0]
}

// Telegram is the decoded content of one framed telegram.
type Telegram struct {
	Start int64
	End   int64

	NationalCode uint64
	CountryCode  uint16
	TagID        string

	DataBlock         bool
	AnimalApplication bool
	Reserved          uint16

	Checksum         uint16
	ComputedChecksum uint16
	ChecksumValid    bool

	ApplicationData uint32
}

// Event tags decoder output with the capture it came from.
// Exactly one of Annotation or Telegram is set.
type Event struct {
	Source     string      `json:"source,omitempty"`
	Annotation *Annotation `json:"annotation,omitempty"`
	Telegram   *Telegram   `json:"telegram,omitempty"`
}

// Output receives decoder emissions in stream order.
type Output interface {
	Annotate(Annotation)
	Complete(Telegram)
}

// Collector is an Output that keeps everything it is given.
type Collector struct {
	Annotations []Annotation
	Telegrams   []Telegram
}

func (c *Collector) Annotate(a Annotation) {
	c.Annotations = append(c.Annotations, a)
}

func (c *Collector) Complete(t Telegram) {
	c.Telegrams = append(c.Telegrams, t)
}

// OfClass returns the collected annotations of the given class.
func (c *Collector) OfClass(class AnnotationClass) []Annotation {
	var ret []Annotation
	for _, a := range c.Annotations {
		if a.Class == class {
			ret = append(ret, a)
		}
	}
	return ret
}
