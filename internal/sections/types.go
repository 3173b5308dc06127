package sections

// Section is one top-level heading of a generated document and the text under it.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Document is the ordered, title-keyed collection of sections parsed from one markdown text.
// Keys keep the position of their first appearance; setting an existing key overwrites the
// body in place.
type Document struct {
	order  []string
	bodies map[string]string
}

func NewDocument() *Document {
	return &Document{bodies: make(map[string]string)}
}

// Set stores body under title. A new title is appended; an existing one keeps its position.
func (d *Document) Set(title, body string) {
	if d.bodies == nil {
		d.bodies = make(map[string]string)
	}
	if _, ok := d.bodies[title]; !ok {
		d.order = append(d.order, title)
	}
	d.bodies[title] = body
}

func (d *Document) Get(title string) (string, bool) {
	body, ok := d.bodies[title]
	return body, ok
}

func (d *Document) Has(title string) bool {
	_, ok := d.bodies[title]
	return ok
}

func (d *Document) Len() int {
	return len(d.order)
}

// Titles returns the section titles in document order.
func (d *Document) Titles() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Sections returns the sections in document order.
func (d *Document) Sections() []Section {
	out := make([]Section, 0, len(d.order))
	for _, title := range d.order {
		out = append(out, Section{Title: title, Body: d.bodies[title]})
	}
	return out
}

func (d *Document) Clone() *Document {
	c := &Document{
		order:  make([]string, len(d.order)),
		bodies: make(map[string]string, len(d.bodies)),
	}
	copy(c.order, d.order)
	for k, v := range d.bodies {
		c.bodies[k] = v
	}
	return c
}
