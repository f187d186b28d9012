package game

import "sync"

// OrderKind tags the Order variant.
type OrderKind int

const (
	OrderMove    OrderKind = iota // go to (X, Y)
	OrderAttack                   // attack TargetUnit or TargetBuilding
	OrderStop                     // drop every order
	OrderGuard                    // toggle guard stance (Enable)
	OrderSpecial                  // mine-lay or self-destruct, per kind
	OrderRetreat                  // whole side leaves the field
)

func (k OrderKind) String() string {
	switch k {
	case OrderMove:
		return "move"
	case OrderAttack:
		return "attack"
	case OrderStop:
		return "stop"
	case OrderGuard:
		return "guard"
	case OrderSpecial:
		return "special"
	case OrderRetreat:
		return "retreat"
	default:
		return "unknown"
	}
}

// Order is an instruction from a player, an AI or a script. Units and
// targets are referenced by ID so orders can cross goroutines and the wire.
type Order struct {
	Kind           OrderKind
	Unit           int  // acting unit ID (all kinds but Retreat)
	X, Y           int  // Move destination cell
	TargetUnit     int  // Attack: unit ID, 0 if attacking a building
	TargetBuilding int  // Attack: building ID
	Enable         bool // Guard
	Side           Side // Retreat
	// Issuer limits the order to units of one side. SideNone is the local
	// commander, who controls both.
	Issuer Side
}

// OrderQueue collects orders from any goroutine. The tick loop drains it.
type OrderQueue struct {
	mu     sync.Mutex
	orders []Order
}

// Push enqueues an order.
func (q *OrderQueue) Push(o Order) {
	q.mu.Lock()
	q.orders = append(q.orders, o)
	q.mu.Unlock()
}

// Drain removes and returns all queued orders in arrival order.
func (q *OrderQueue) Drain() []Order {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.orders
	q.orders = nil
	return out
}

// Len returns the number of queued orders.
func (q *OrderQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.orders)
}

// --- enqueue helpers ---

// Move orders u to walk to cell (x, y).
func (b *Battle) Move(u *Unit, x, y int) {
	b.orders.Push(Order{Kind: OrderMove, Unit: u.id, X: x, Y: y})
}

// Attack orders u to attack a unit or a building.
func (b *Battle) Attack(u *Unit, t Target) {
	o := Order{Kind: OrderAttack, Unit: u.id}
	switch {
	case t.Unit != nil:
		o.TargetUnit = t.Unit.id
	case t.Building != nil:
		o.TargetBuilding = t.Building.id
	}
	b.orders.Push(o)
}

// Stop cancels all of u's orders.
func (b *Battle) Stop(u *Unit) {
	b.orders.Push(Order{Kind: OrderStop, Unit: u.id})
}

// Guard switches u's guard stance.
func (b *Battle) Guard(u *Unit, enable bool) {
	b.orders.Push(Order{Kind: OrderGuard, Unit: u.id, Enable: enable})
}

// Special triggers u's special ability.
func (b *Battle) Special(u *Unit) {
	b.orders.Push(Order{Kind: OrderSpecial, Unit: u.id})
}

// Retreat pulls a whole side off the field.
func (b *Battle) Retreat(side Side) {
	b.orders.Push(Order{Kind: OrderRetreat, Side: side})
}

// Enqueue accepts a prebuilt order (network input, scripts).
func (b *Battle) Enqueue(o Order) {
	b.orders.Push(o)
}

// Select marks u as selected in a control group. UI state only.
func (b *Battle) Select(u *Unit, selected bool, group int) {
	u.selected = selected
	u.group = group
}

// applyOrders executes queued orders against the simulation.
func (b *Battle) applyOrders() {
	for _, o := range b.orders.Drain() {
		b.applyOrder(o)
	}
}

func (b *Battle) applyOrder(o Order) {
	if o.Kind == OrderRetreat {
		if o.Issuer != SideNone && o.Issuer != o.Side {
			b.Log.Add(b.tick, "--", o.Issuer.String(), "order", "dropped", "retreat for "+o.Side.String(), 0)
			return
		}
		b.beginRetreat(o.Side)
		return
	}
	u := b.unitByID(o.Unit)
	if u == nil || !u.Alive() || u.retreating {
		b.Log.Add(b.tick, "--", "--", "order", "dropped", o.Kind.String(), float64(o.Unit))
		return
	}
	if o.Issuer != SideNone && u.owner.Side != o.Issuer {
		b.Log.Add(b.tick, u.label, o.Issuer.String(), "order", "dropped", o.Kind.String()+" (not commanded)", 0)
		return
	}
	if u.paralysis > 0 {
		b.Log.Add(b.tick, u.label, u.owner.Side.String(), "order", "dropped", o.Kind.String()+" (paralyzed)", 0)
		return
	}
	side := u.owner.Side.String()

	switch o.Kind {
	case OrderMove:
		goal := Cell{X: o.X, Y: o.Y}
		u.clearOrders()
		if !b.terrain.InBounds(goal) {
			b.Log.Add(b.tick, u.label, side, "order", "dropped", "move out of bounds", 0)
			return
		}
		u.requestPlan(goal)
		b.Log.Add(b.tick, u.label, side, "order", "move", fmtCell(goal), 0)

	case OrderAttack:
		var t Target
		if o.TargetUnit != 0 {
			t.Unit = b.unitByID(o.TargetUnit)
		} else if o.TargetBuilding != 0 {
			t.Building = b.buildingByID(o.TargetBuilding)
		}
		if !t.Alive() || t.Owner() == u.owner || !u.kind.Armed() {
			b.Log.Add(b.tick, u.label, side, "order", "dropped", "attack: invalid target", 0)
			return
		}
		u.clearOrders()
		u.target = t
		u.explicit = true
		b.Log.Add(b.tick, u.label, side, "order", "attack", targetLabel(t), 0)

	case OrderStop:
		u.clearOrders()
		b.Log.Add(b.tick, u.label, side, "order", "stop", "", 0)

	case OrderGuard:
		u.guard = o.Enable
		b.Log.Add(b.tick, u.label, side, "order", "guard", boolLabel(o.Enable), 0)

	case OrderSpecial:
		b.startSpecial(u)
	}
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
