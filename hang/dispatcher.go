package hang

// Dispatcher routes decoded envelopes to registered callbacks. Unknown
// kinds are dropped without error; unhandled kinds are simply not routed.
type Dispatcher struct {
	onStatus    func(StatusPayload)
	onHistory   func([]Message)
	onBroadcast func(Message)
	onUpdate    func(UpdateKind)
	onError     func(error)
}

func (d *Dispatcher) SetOnStatus(fn func(StatusPayload)) { d.onStatus = fn }
func (d *Dispatcher) SetOnHistory(fn func([]Message))    { d.onHistory = fn }
func (d *Dispatcher) SetOnBroadcast(fn func(Message))    { d.onBroadcast = fn }
func (d *Dispatcher) SetOnUpdate(fn func(UpdateKind))    { d.onUpdate = fn }
func (d *Dispatcher) SetOnError(fn func(error))          { d.onError = fn }

func (d *Dispatcher) Dispatch(env Envelope) {
	switch env.Kind {
	case KindStatus:
		if d.onStatus == nil {
			return
		}
		p, err := env.Status()
		if err != nil {
			d.fireError(err)
			return
		}
		d.onStatus(p)
	case KindLoadMessage:
		if d.onHistory == nil {
			return
		}
		msgs, err := env.Messages()
		if err != nil {
			d.fireError(err)
			return
		}
		d.onHistory(msgs)
	case KindSendMessage:
		if d.onBroadcast == nil {
			return
		}
		m, err := env.Message()
		if err != nil {
			d.fireError(err)
			return
		}
		d.onBroadcast(m)
	case KindUpdate:
		if d.onUpdate == nil {
			return
		}
		kind, err := env.Update()
		if err != nil {
			d.fireError(err)
			return
		}
		d.onUpdate(kind)
	}
}

func (d *Dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
