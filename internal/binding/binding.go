// Package binding maps aggregated forecast record sets onto template slots:
// spreadsheet cell addresses or flat named fields.
package binding

// Slot is one address/value pair of a Binding.
type Slot struct {
	Address string `json:"address"`
	Value   string `json:"value"`
}

// Binding is an ordered slot→value mapping. It is read-only once built.
type Binding struct {
	order  []string
	values map[string]string
}

// Len returns the number of distinct slots.
func (b Binding) Len() int { return len(b.order) }

// Get returns the value bound to address.
func (b Binding) Get(address string) (string, bool) {
	v, ok := b.values[address]
	return v, ok
}

// Addresses returns the slot addresses in first-write order.
func (b Binding) Addresses() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Slots returns every slot in first-write order with its final value.
func (b Binding) Slots() []Slot {
	out := make([]Slot, 0, len(b.order))
	for _, a := range b.order {
		out = append(out, Slot{Address: a, Value: b.values[a]})
	}
	return out
}

// builder accumulates slots; a later set replaces the value but keeps the position.
type builder struct {
	order  []string
	values map[string]string
}

func newBuilder() *builder {
	return &builder{values: make(map[string]string)}
}

func (b *builder) set(address, value string) {
	if _, ok := b.values[address]; !ok {
		b.order = append(b.order, address)
	}
	b.values[address] = value
}

// setOnce keeps an existing value.
func (b *builder) setOnce(address, value string) {
	if _, ok := b.values[address]; ok {
		return
	}
	b.set(address, value)
}

func (b *builder) build() Binding {
	return Binding{order: b.order, values: b.values}
}
