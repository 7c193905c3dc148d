package realtime

// Handler processes one realtime message of a registered type.
type Handler func(env Envelope)

// Dispatcher routes incoming envelopes to per-type handlers, discarding
// messages scoped to other houses.
type Dispatcher struct {
	houseID  int
	logger   Logger
	handlers map[string]Handler
}

// NewDispatcher returns a dispatcher for the given house. Messages whose
// house_id is set and differs from houseID are dropped before any handler
// runs; unscoped messages always pass.
func NewDispatcher(houseID int, logger Logger) *Dispatcher {
	return &Dispatcher{
		houseID:  houseID,
		logger:   logger,
		handlers: make(map[string]Handler),
	}
}

// Handle registers the handler for a message type, replacing any previous
// registration.
func (d *Dispatcher) Handle(msgType string, h Handler) {
	d.handlers[msgType] = h
}

// Dispatch routes one envelope. Pongs are absorbed here; a message type
// with no handler is logged and ignored so newer backends can add types
// without breaking older agents.
func (d *Dispatcher) Dispatch(env Envelope) {
	if env.HouseID != 0 && env.HouseID != d.houseID {
		d.logger.Debug("message for another house ignored", "type", env.Type, "house_id", env.HouseID)
		return
	}
	if env.Type == TypePong {
		return
	}

	h, ok := d.handlers[env.Type]
	if !ok {
		d.logger.Warn("unknown message type ignored", "type", env.Type)
		return
	}
	h(env)
}
