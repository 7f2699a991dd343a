package item

// Listener is called synchronously after an inventory mutation. Listeners
// must not call mutating Inventory methods.
type Listener func(inv *Inventory)

// Event names accepted by Subscribe.
const (
	EventChanged  = "changed"
	EventRowAdded = "row_added"
)

type listenerEntry struct {
	name string
	fn   Listener
}

// listeners keeps registrations per event in registration order.
type listeners struct {
	byEvent map[string][]listenerEntry
}

func (l *listeners) add(event, name string, fn Listener) {
	if l.byEvent == nil {
		l.byEvent = make(map[string][]listenerEntry)
	}
	l.byEvent[event] = append(l.byEvent[event], listenerEntry{name: name, fn: fn})
}

// remove drops every registration carrying name, across all events.
func (l *listeners) remove(name string) {
	for event, entries := range l.byEvent {
		n := 0
		for _, e := range entries {
			if e.name != name {
				entries[n] = e
				n++
			}
		}
		l.byEvent[event] = entries[:n]
	}
}

func (l *listeners) fire(event string, inv *Inventory) {
	for _, e := range l.byEvent[event] {
		e.fn(inv)
	}
}

// Subscribe registers fn for event under name. name is used by Unsubscribe
// and may be shared by several registrations.
func (inv *Inventory) Subscribe(event, name string, fn Listener) {
	inv.listeners.add(event, name, fn)
}

// OnChanged registers fn for the inventory-changed notification.
func (inv *Inventory) OnChanged(name string, fn Listener) {
	inv.Subscribe(EventChanged, name, fn)
}

// OnRowAdded registers fn for the row-added notification, fired once per
// appended row.
func (inv *Inventory) OnRowAdded(name string, fn Listener) {
	inv.Subscribe(EventRowAdded, name, fn)
}

// Unsubscribe removes all listeners registered under name.
func (inv *Inventory) Unsubscribe(name string) {
	inv.listeners.remove(name)
}

func (inv *Inventory) changed()  { inv.listeners.fire(EventChanged, inv) }
func (inv *Inventory) rowAdded() { inv.listeners.fire(EventRowAdded, inv) }
