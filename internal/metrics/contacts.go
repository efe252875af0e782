package metrics

import "github.com/san-kum/verletsim/internal/sim"

// Contacts is the mean number of pair corrections per frame.
type Contacts struct {
	name    string
	sum     float64
	samples int
}

func NewContacts() *Contacts {
	return &Contacts{
		name: "contacts",
	}
}

func (c *Contacts) Name() string {
	return c.name
}

func (c *Contacts) Observe(f *sim.Frame) {
	c.sum += float64(f.Stats.Contacts)
	c.samples++
}

func (c *Contacts) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Contacts) Reset() {
	c.sum = 0
	c.samples = 0
}
